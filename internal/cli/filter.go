package cli

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/todoscan/internal/priority"
	"github.com/calvinalkan/todoscan/internal/query"
	"github.com/calvinalkan/todoscan/internal/todo"
)

// filterFlags are the query flags shared by ls, stats, export and issues.
type filterFlags struct {
	priority *string
	assignee *string
	category *string
	search   *string
	sort     *string
}

func addFilterFlags(fs *flag.FlagSet) *filterFlags {
	return &filterFlags{
		priority: fs.StringP("priority", "p", "", "Only items with this priority (\"none\" for unprioritized)"),
		assignee: fs.StringP("assignee", "a", "", "Only items whose assignee contains this text"),
		category: fs.String("category", "", "Only items whose category contains this text"),
		search:   fs.StringP("search", "s", "", "Free text, or key:value on a metadata field or tag"),
		sort:     fs.String("sort", "", "Comma-separated sort keys, '-' prefix for descending ("+columnList()+")"),
	}
}

func (f *filterFlags) criteria() query.Criteria {
	c := query.ParsePriority(*f.priority)
	c.Assignee = *f.assignee
	c.Category = *f.category
	c.Text = *f.search

	return c
}

// apply filters then sorts items. Without --sort items keep scan order.
func (f *filterFlags) apply(items []todo.Item, reg *priority.Registry) ([]todo.Item, error) {
	keys, err := query.ParseSortKeys(*f.sort)
	if err != nil {
		return nil, err
	}

	items = query.Filter(items, f.criteria())

	if len(keys) == 0 {
		return items, nil
	}

	return query.Sort(items, keys, reg), nil
}

func columnList() string {
	cols := query.Columns()
	names := make([]string, len(cols))

	for i, c := range cols {
		names[i] = string(c)
	}

	return strings.Join(names, ",")
}

// formatItem renders one ls line:
// "path:line [PRIORITY] @assignee [category] description due:DATE (overdue) issue:ID".
func formatItem(it todo.Item, today civil.Date, paint func(string) string) string {
	var b strings.Builder

	b.WriteString(it.Location())

	if it.Priority != "" {
		b.WriteString(" " + paint("["+it.Priority+"]"))
	}

	if it.Assignee != "" {
		b.WriteString(" @" + it.Assignee)
	}

	if it.Category != "" {
		b.WriteString(" [" + it.Category + "]")
	}

	b.WriteString(" " + it.Description)

	if it.HasDue() {
		fmt.Fprintf(&b, " due:%s", it.Due)

		switch query.DueStatus(it, today) {
		case query.DueOverdue:
			b.WriteString(" (overdue)")
		case query.DueSoon:
			b.WriteString(" (due soon)")
		}
	}

	if it.IssueID != "" {
		b.WriteString(" issue:" + it.IssueID)
	}

	return b.String()
}
