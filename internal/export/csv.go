// Package export renders item collections as CSV, Markdown or YAML text.
//
// Renderers return strings; writing them anywhere is the caller's job.
package export

import (
	"strconv"
	"strings"

	"github.com/calvinalkan/todoscan/internal/todo"
)

// CSVOptions configures [CSV].
type CSVOptions struct {
	// Extended adds the "Due Date" and "Issue" columns.
	Extended bool
}

var (
	csvHeader         = []string{"Priority", "Assignee", "Category", "Description", "File", "Line"}
	csvExtendedHeader = []string{"Priority", "Due Date", "Assignee", "Category", "Issue", "Description", "File", "Line"}
)

// CSV renders items one row each, in input order, after a header row.
// Rows end with "\n". Absent fields are empty.
func CSV(items []todo.Item, opts CSVOptions) string {
	var b strings.Builder

	header := csvHeader
	if opts.Extended {
		header = csvExtendedHeader
	}

	writeCSVRow(&b, header)

	for _, it := range items {
		writeCSVRow(&b, csvRecord(it, opts.Extended))
	}

	return b.String()
}

func csvRecord(it todo.Item, extended bool) []string {
	line := strconv.Itoa(it.Line)

	if !extended {
		return []string{it.Priority, it.Assignee, it.Category, it.Description, it.FilePath, line}
	}

	due := ""
	if it.HasDue() {
		due = it.Due.String()
	}

	return []string{it.Priority, due, it.Assignee, it.Category, it.IssueID, it.Description, it.FilePath, line}
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}

		b.WriteString(escapeCSV(f))
	}

	b.WriteByte('\n')
}

// escapeCSV quotes a field containing a comma, a double quote or a line
// break, doubling inner quotes. Other fields are written verbatim.
func escapeCSV(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}

	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
