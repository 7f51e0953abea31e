package export

import (
	"strconv"
	"strings"

	"github.com/calvinalkan/todoscan/internal/priority"
	"github.com/calvinalkan/todoscan/internal/todo"
)

// MarkdownTitle is the document heading written by [Markdown].
const MarkdownTitle = "TODO List Export"

// NoPriorityHeading is the heading of the section for items without priority.
const NoPriorityHeading = "No Priority"

// Section is one group of a Markdown export.
type Section struct {
	Heading string
	Items   []todo.Item
}

// GroupByPriority splits items into sections: one per registry level in
// registry order, then one per unregistered priority in first-seen order,
// then "No Priority". Empty sections are omitted. Items keep their input
// order within a section.
func GroupByPriority(items []todo.Item, reg *priority.Registry) []Section {
	byName := make(map[string][]todo.Item)

	var unknown []string

	for _, it := range items {
		if it.Priority != "" && !reg.Contains(it.Priority) {
			if _, seen := byName[it.Priority]; !seen {
				unknown = append(unknown, it.Priority)
			}
		}

		byName[it.Priority] = append(byName[it.Priority], it)
	}

	var sections []Section

	for _, name := range append(reg.Names(), unknown...) {
		if group := byName[name]; len(group) > 0 {
			sections = append(sections, Section{Heading: name + " Priority", Items: group})
		}
	}

	if group := byName[""]; len(group) > 0 {
		sections = append(sections, Section{Heading: NoPriorityHeading, Items: group})
	}

	return sections
}

// Markdown renders items as a checklist grouped by [GroupByPriority].
func Markdown(items []todo.Item, reg *priority.Registry) string {
	var b strings.Builder

	b.WriteString("# " + MarkdownTitle + "\n\n")

	for _, section := range GroupByPriority(items, reg) {
		b.WriteString("## " + section.Heading + "\n\n")

		for _, it := range section.Items {
			b.WriteString(markdownLine(it))
			b.WriteByte('\n')
		}

		b.WriteByte('\n')
	}

	return b.String()
}

// markdownLine renders
// "- [ ] 📅 2025-01-31 **@john** [bug] Fix it (`auth.go:10`)".
func markdownLine(it todo.Item) string {
	var b strings.Builder

	b.WriteString("- [ ] ")

	if it.HasDue() {
		b.WriteString("📅 " + it.Due.String() + " ")
	}

	if it.Assignee != "" {
		b.WriteString("**@" + it.Assignee + "** ")
	}

	if it.Category != "" {
		b.WriteString("[" + it.Category + "] ")
	}

	b.WriteString(it.Description)
	b.WriteString(" (`" + it.FileName() + ":" + strconv.Itoa(it.Line) + "`)")

	return b.String()
}
