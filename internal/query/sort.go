package query

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/calvinalkan/todoscan/internal/priority"
	"github.com/calvinalkan/todoscan/internal/todo"
)

// Column names a sortable item attribute.
type Column string

// Sortable columns.
const (
	ColumnPriority    Column = "priority"
	ColumnAssignee    Column = "assignee"
	ColumnCategory    Column = "category"
	ColumnDue         Column = "due"
	ColumnDescription Column = "description"
	ColumnFile        Column = "file"
	ColumnLine        Column = "line"
	ColumnIssue       Column = "issue"
)

// Columns lists every sortable column.
func Columns() []Column {
	return []Column{
		ColumnPriority, ColumnAssignee, ColumnCategory, ColumnDue,
		ColumnDescription, ColumnFile, ColumnLine, ColumnIssue,
	}
}

// ErrUnknownColumn is returned for sort keys naming no known column.
var ErrUnknownColumn = errors.New("unknown sort column")

// SortKey is one column of a multi-column sort.
type SortKey struct {
	Column     Column
	Descending bool
}

// ParseSortKeys parses a comma-separated list like "priority,-line".
// A leading '-' sorts that column in descending order.
func ParseSortKeys(list string) ([]SortKey, error) {
	var keys []SortKey

	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		name, desc := strings.CutPrefix(field, "-")
		col := Column(strings.ToLower(strings.TrimSpace(name)))

		if !slices.Contains(Columns(), col) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
		}

		keys = append(keys, SortKey{Column: col, Descending: desc})
	}

	return keys, nil
}

// Sort returns a copy of items ordered by keys, earlier keys taking
// precedence. The sort is stable, so items equal under every key keep their
// input order.
func Sort(items []todo.Item, keys []SortKey, reg *priority.Registry) []todo.Item {
	out := slices.Clone(items)

	slices.SortStableFunc(out, func(a, b todo.Item) int {
		for _, key := range keys {
			if c := Compare(a, b, key, reg); c != 0 {
				return c
			}
		}

		return 0
	})

	return out
}

// Compare orders a and b by a single key.
//
// Priority orders by registry rank; names missing from the registry come
// after every known level, and items without priority always come last.
// Text and date columns compare case-insensitively with empty values last
// in either direction. Line numbers compare numerically; non-positive line
// numbers sort as maximal.
func Compare(a, b todo.Item, key SortKey, reg *priority.Registry) int {
	switch key.Column {
	case ColumnPriority:
		return comparePriority(a.Priority, b.Priority, key.Descending, reg)
	case ColumnLine:
		return directed(cmp.Compare(lineValue(a.Line), lineValue(b.Line)), key.Descending)
	case ColumnDue:
		return compareDue(a, b, key.Descending)
	case ColumnAssignee:
		return compareText(a.Assignee, b.Assignee, key.Descending)
	case ColumnCategory:
		return compareText(a.Category, b.Category, key.Descending)
	case ColumnDescription:
		return compareText(a.Description, b.Description, key.Descending)
	case ColumnFile:
		return compareText(a.FilePath, b.FilePath, key.Descending)
	case ColumnIssue:
		return compareText(a.IssueID, b.IssueID, key.Descending)
	default:
		return 0
	}
}

func comparePriority(a, b string, desc bool, reg *priority.Registry) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}

	return directed(cmp.Compare(priorityRank(a, reg), priorityRank(b, reg)), desc)
}

// priorityRank returns the registry position, or Len() for names the
// registry does not contain.
func priorityRank(name string, reg *priority.Registry) int {
	if rank, ok := reg.Rank(name); ok {
		return rank
	}

	return reg.Len()
}

func compareText(a, b string, desc bool) int {
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	}

	return directed(strings.Compare(strings.ToLower(a), strings.ToLower(b)), desc)
}

func compareDue(a, b todo.Item, desc bool) int {
	switch {
	case !a.HasDue() && !b.HasDue():
		return 0
	case !a.HasDue():
		return 1
	case !b.HasDue():
		return -1
	}

	c := 0

	switch {
	case a.Due.Before(b.Due):
		c = -1
	case a.Due.After(b.Due):
		c = 1
	}

	return directed(c, desc)
}

func lineValue(line int) int {
	if line <= 0 {
		return math.MaxInt
	}

	return line
}

func directed(c int, desc bool) int {
	if desc {
		return -c
	}

	return c
}
