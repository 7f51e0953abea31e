// Package query filters, sorts and aggregates item collections.
//
// All functions are read-only over their input: filtering returns a new
// slice, sorting returns a sorted copy, and nothing mutates an [todo.Item].
package query

import (
	"strings"

	"github.com/calvinalkan/todoscan/internal/priority"
	"github.com/calvinalkan/todoscan/internal/todo"
)

// Criteria selects items. Empty fields do not constrain; set fields are
// combined with AND.
type Criteria struct {
	// Priority matches the canonical priority name exactly
	// (case-insensitive).
	Priority string
	// NoPriority matches only items without a priority. It takes
	// precedence over Priority.
	NoPriority bool
	// Assignee is a case-insensitive substring; a leading '@' is ignored.
	Assignee string
	// Category is a case-insensitive substring.
	Category string
	// Text is either "key:value" or a description substring.
	Text string
}

// ParsePriority converts a user-supplied priority criterion. "none" and "-"
// select items without priority.
func ParsePriority(value string) Criteria {
	value = strings.TrimSpace(value)

	if strings.EqualFold(value, "none") || value == "-" {
		return Criteria{NoPriority: true}
	}

	return Criteria{Priority: value}
}

// IsZero reports whether c matches every item.
func (c Criteria) IsZero() bool {
	return !c.NoPriority &&
		strings.TrimSpace(c.Priority) == "" &&
		normalizeAssignee(c.Assignee) == "" &&
		strings.TrimSpace(c.Category) == "" &&
		strings.TrimSpace(c.Text) == ""
}

// Match reports whether it satisfies every set criterion.
func (c Criteria) Match(it todo.Item) bool {
	if c.NoPriority {
		if it.Priority != "" {
			return false
		}
	} else if name := priority.Canonical(c.Priority); name != "" && it.Priority != name {
		return false
	}

	if needle := normalizeAssignee(c.Assignee); needle != "" && !containsFold(it.Assignee, needle) {
		return false
	}

	if needle := strings.TrimSpace(c.Category); needle != "" && !containsFold(it.Category, needle) {
		return false
	}

	return matchText(it, strings.TrimSpace(c.Text))
}

// Filter returns the items matching c, in input order.
func Filter(items []todo.Item, c Criteria) []todo.Item {
	out := make([]todo.Item, 0, len(items))

	for _, it := range items {
		if c.Match(it) {
			out = append(out, it)
		}
	}

	return out
}

// matchText applies the free-text criterion. "key:value" dispatches on key
// the same way the parser classifies metadata; anything else searches the
// description.
func matchText(it todo.Item, text string) bool {
	if text == "" {
		return true
	}

	key, value, ok := strings.Cut(text, ":")
	if !ok {
		return containsFold(it.Description, text)
	}

	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case todo.KeyPriority:
		return it.Priority != "" && strings.EqualFold(it.Priority, value)
	case todo.KeyAssignee, todo.KeyAssigned:
		return containsFold(it.Assignee, strings.TrimPrefix(value, "@"))
	case todo.KeyCategory:
		return containsFold(it.Category, value)
	case todo.KeyDue:
		return it.HasDue() && strings.Contains(it.Due.String(), value)
	case todo.KeyIssue:
		return containsFold(it.IssueID, value)
	default:
		tag, found := it.Tag(key)

		return found && containsFold(tag, value)
	}
}

// containsFold reports whether needle occurs in s ignoring case. An absent
// (empty) s never matches.
func containsFold(s, needle string) bool {
	if s == "" {
		return false
	}

	return strings.Contains(strings.ToLower(s), strings.ToLower(needle))
}

func normalizeAssignee(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "@")
}
