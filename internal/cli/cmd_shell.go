package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/todoscan/internal/query"
	"github.com/calvinalkan/todoscan/internal/todo"
)

const shellPrompt = "todoscan> "

var shellCommands = []string{
	"filter", "priority", "assignee", "category", "sort",
	"clear", "ls", "stats", "rescan", "help", "quit", "exit",
}

// ShellCmd returns the shell command.
func ShellCmd(a *app) *Command {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "shell [paths...]",
		Short: "Interactive query shell",
		Long: `Scan once, then filter, sort and summarize the items interactively.

Commands: filter <text|key:value>, priority <name|none>, assignee <text>,
category <text>, sort <keys>, clear, ls [n], stats, rescan, help, quit.
Tab completes commands, metadata keys and configured priority names.
When stdin is not a terminal, commands are read line by line without a prompt.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			s := &session{a: a, o: o, roots: args}
			s.rescan(ctx)

			if isTerminal(a.in) {
				return s.interactive(ctx)
			}

			return s.batch(ctx, a.in)
		},
	}
}

// session holds the shell's scan result and active query.
type session struct {
	a        *app
	o        *IO
	roots    []string
	items    []todo.Item
	criteria query.Criteria
	sortSpec string
	sortKeys []query.SortKey
}

func (s *session) interactive(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	if f, err := os.Open(s.a.historyPath); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}

	defer s.saveHistory(line)

	s.o.Println("Type 'help' for available commands.")

	for ctx.Err() == nil {
		input, err := line.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		if s.exec(ctx, input) {
			return nil
		}
	}

	return nil
}

func (s *session) batch(ctx context.Context, in io.Reader) error {
	if in == nil {
		return nil
	}

	scanner := bufio.NewScanner(in)

	for ctx.Err() == nil && scanner.Scan() {
		if s.exec(ctx, scanner.Text()) {
			return nil
		}
	}

	err := scanner.Err()
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

func (s *session) saveHistory(line *liner.State) {
	if s.a.historyPath == "" {
		return
	}

	f, err := os.Create(s.a.historyPath)
	if err != nil {
		return
	}

	_, _ = line.WriteHistory(f)
	_ = f.Close()
}

// exec runs one shell line. Returns true when the session should end.
func (s *session) exec(ctx context.Context, input string) bool {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false
	}

	cmd, rest := strings.ToLower(fields[0]), strings.Join(fields[1:], " ")

	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		s.printHelp()
	case "filter", "search":
		s.criteria.Text = rest
		s.printCount()
	case "priority":
		p := query.ParsePriority(rest)
		s.criteria.Priority, s.criteria.NoPriority = p.Priority, p.NoPriority
		s.printCount()
	case "assignee":
		s.criteria.Assignee = rest
		s.printCount()
	case "category":
		s.criteria.Category = rest
		s.printCount()
	case "sort":
		keys, err := query.ParseSortKeys(rest)
		if err != nil {
			s.o.Println("error:", err)

			return false
		}

		s.sortSpec, s.sortKeys = rest, keys
	case "clear":
		s.criteria, s.sortSpec, s.sortKeys = query.Criteria{}, "", nil
		s.printCount()
	case "ls", "list":
		s.list(rest)
	case "stats":
		s.o.Println(query.ComputeStatistics(s.view(), s.a.reg).Summary(s.a.reg))
	case "rescan":
		s.rescan(ctx)
	default:
		s.o.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}

	return false
}

// view returns the items matching the active query.
func (s *session) view() []todo.Item {
	items := query.Filter(s.items, s.criteria)
	if len(s.sortKeys) > 0 {
		items = query.Sort(items, s.sortKeys, s.a.reg)
	}

	return items
}

func (s *session) list(limitArg string) {
	items := s.view()

	if limitArg != "" {
		n, err := strconv.Atoi(limitArg)
		if err != nil || n < 0 {
			s.o.Println("error: ls takes an optional non-negative count")

			return
		}

		if n > 0 && len(items) > n {
			items = items[:n]
		}
	}

	today := s.a.today()

	for _, it := range items {
		s.o.Println(formatItem(it, today, s.a.painter(it.Priority)))
	}
}

func (s *session) printCount() {
	s.o.Printf("%d of %d items match\n", len(s.view()), len(s.items))
}

// rescan replaces the item set. Scan warnings are printed immediately.
func (s *session) rescan(ctx context.Context) {
	scanIO := NewIO(s.o.out, s.o.errOut)

	items, err := s.a.scanItems(ctx, scanIO, s.roots)
	if err != nil {
		s.o.ErrPrintln("error:", err)

		return
	}

	_ = scanIO.Finish()
	s.items = items

	s.o.Println(query.ComputeStatistics(items, s.a.reg).Summary(s.a.reg))
}

func (s *session) printHelp() {
	s.o.Println("Commands:")
	s.o.Println("  filter <text|key:value>   Free-text or metadata/tag search (empty clears)")
	s.o.Println("  priority <name|none>      Only this priority (empty clears)")
	s.o.Println("  assignee <text>           Only assignees containing text (empty clears)")
	s.o.Println("  category <text>           Only categories containing text (empty clears)")
	s.o.Println("  sort <keys>               e.g. 'priority,-due' (empty restores scan order)")
	s.o.Println("  clear                     Reset filters and sort")
	s.o.Println("  ls [n]                    List matching items")
	s.o.Println("  stats                     Summarize matching items")
	s.o.Println("  rescan                    Scan the paths again")
	s.o.Println("  help                      Show this help")
	s.o.Println("  quit / exit / q           Leave the shell")
}

// complete returns full-line candidates for tab completion.
func (s *session) complete(line string) []string {
	head, arg, hasArg := strings.Cut(line, " ")
	if !hasArg {
		return withPrefix("", shellCommands, strings.ToLower(head))
	}

	head = strings.ToLower(head)
	prefix := head + " "

	var candidates []string

	switch head {
	case "priority":
		for _, name := range s.a.reg.Names() {
			candidates = append(candidates, strings.ToLower(name))
		}

		candidates = append(candidates, "none")
	case "filter", "search":
		candidates = []string{
			todo.KeyPriority + ":", todo.KeyAssignee + ":", todo.KeyCategory + ":",
			todo.KeyDue + ":", todo.KeyIssue + ":",
		}

		for _, name := range s.a.reg.Names() {
			candidates = append(candidates, todo.KeyPriority+":"+strings.ToLower(name))
		}

		for _, key := range tagKeys(s.items) {
			candidates = append(candidates, key+":")
		}
	case "sort":
		// Complete the last comma-separated key.
		done, last := "", arg
		if i := strings.LastIndex(arg, ","); i >= 0 {
			done, last = arg[:i+1], arg[i+1:]
		}

		var cols []string

		for _, c := range query.Columns() {
			cols = append(cols, string(c), "-"+string(c))
		}

		return withPrefix(prefix+done, cols, last)
	default:
		return nil
	}

	return withPrefix(prefix, candidates, arg)
}

// withPrefix returns prefix+c for every candidate c starting with partial.
func withPrefix(prefix string, candidates []string, partial string) []string {
	var out []string

	lower := strings.ToLower(partial)

	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), lower) {
			out = append(out, prefix+c)
		}
	}

	return out
}

// tagKeys returns the distinct tag keys of items in first-seen order.
func tagKeys(items []todo.Item) []string {
	seen := map[string]bool{}

	var keys []string

	for _, it := range items {
		for _, key := range slices.Sorted(maps.Keys(it.Tags)) {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}

	return keys
}
