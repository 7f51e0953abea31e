package query

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/calvinalkan/todoscan/internal/priority"
	"github.com/calvinalkan/todoscan/internal/todo"
)

// Statistics summarizes an item collection.
type Statistics struct {
	Total int
	// PerPriority counts items per configured level. Levels without items
	// are omitted.
	PerPriority     map[string]int
	MissingPriority int
	MissingAssignee int
}

// ComputeStatistics counts items per configured priority level and the
// items missing priority or assignee. Items whose priority is not in reg
// count toward Total only.
func ComputeStatistics(items []todo.Item, reg *priority.Registry) Statistics {
	stats := Statistics{
		Total:       len(items),
		PerPriority: make(map[string]int),
	}

	for _, it := range items {
		if it.Priority == "" {
			stats.MissingPriority++
		} else if reg.Contains(it.Priority) {
			stats.PerPriority[it.Priority]++
		}

		if it.Assignee == "" {
			stats.MissingAssignee++
		}
	}

	return stats
}

// Summary renders a one-line status, e.g.
// "Found 4 TODOs (1 high, 2 low) | 1 need priority, 3 unassigned".
// Per-level counts follow registry order.
func (s Statistics) Summary(reg *priority.Registry) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Found %d TODOs", s.Total)

	if s.Total == 0 {
		return b.String()
	}

	var counts []string

	for _, name := range reg.Names() {
		if n := s.PerPriority[name]; n > 0 {
			counts = append(counts, fmt.Sprintf("%d %s", n, strings.ToLower(name)))
		}
	}

	if len(counts) > 0 {
		b.WriteString(" (" + strings.Join(counts, ", ") + ")")
	}

	var warnings []string

	if s.MissingPriority > 0 {
		warnings = append(warnings, fmt.Sprintf("%d need priority", s.MissingPriority))
	}

	if s.MissingAssignee > 0 {
		warnings = append(warnings, fmt.Sprintf("%d unassigned", s.MissingAssignee))
	}

	if len(warnings) > 0 {
		b.WriteString(" | " + strings.Join(warnings, ", "))
	}

	return b.String()
}

// DueState classifies an item's due date relative to today.
type DueState int

// Due states.
const (
	DueNone DueState = iota
	DueOverdue
	DueSoon
	DueLater
)

// dueSoonDays is the window, in days, for [DueSoon].
const dueSoonDays = 7

func (s DueState) String() string {
	switch s {
	case DueOverdue:
		return "overdue"
	case DueSoon:
		return "due-soon"
	case DueLater:
		return "later"
	default:
		return "none"
	}
}

// DueStatus reports whether it is overdue (before today), due within the
// next seven days, or due later.
func DueStatus(it todo.Item, today civil.Date) DueState {
	switch {
	case !it.HasDue():
		return DueNone
	case it.Due.Before(today):
		return DueOverdue
	case it.Due.Before(today.AddDays(dueSoonDays)):
		return DueSoon
	default:
		return DueLater
	}
}
