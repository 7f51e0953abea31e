// Package todo parses annotated task comments into [Item] values.
//
// A recognized comment looks like
//
//	// TODO(@john priority:high category:bug due:2025-01-31 risk:low): Fix auth token expiry
//
// The parenthesized metadata block is optional. Items are built once by a
// [Parser] and never modified afterwards; a re-scan replaces them wholesale.
package todo

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
)

// Reserved metadata keys. Tokens using these keys set Item fields and never
// end up in Item.Tags.
const (
	KeyPriority = "priority"
	KeyCategory = "category"
	KeyAssignee = "assignee"
	KeyAssigned = "assigned"
	KeyDue      = "due"
	KeyIssue    = "issue"
)

// IsReservedKey reports whether key (lower-cased) is handled by a dedicated
// Item field instead of the tag map.
func IsReservedKey(key string) bool {
	switch key {
	case KeyPriority, KeyCategory, KeyAssignee, KeyAssigned, KeyDue, KeyIssue:
		return true
	default:
		return false
	}
}

// Item is a single work item extracted from one source line.
//
// Optional string fields use "" for absent. Priority holds the canonical
// (upper-cased) name, which may be absent from the configured registry.
// Treat Items as read-only: they are shared between filters, sorters and
// exporters.
type Item struct {
	Marker      string
	Description string
	Assignee    string
	Priority    string
	Category    string
	IssueID     string
	Due         civil.Date
	// Tags maps lower-cased custom keys to their values. Nil when the
	// metadata block had no custom keys.
	Tags     map[string]string
	FilePath string
	Line     int
	FullText string
}

// HasDue reports whether a due date was parsed.
func (it Item) HasDue() bool {
	return !it.Due.IsZero()
}

// Tag returns the value of a custom tag. The key lookup is case-insensitive.
func (it Item) Tag(key string) (string, bool) {
	v, ok := it.Tags[strings.ToLower(key)]

	return v, ok
}

// IsPlain reports whether the item carries none of assignee, priority or
// category.
func (it Item) IsPlain() bool {
	return it.Assignee == "" && it.Priority == "" && it.Category == ""
}

// FileName returns the last element of FilePath. Both '/' and '\' are
// treated as separators.
func (it Item) FileName() string {
	idx := strings.LastIndexAny(it.FilePath, `/\`)
	if idx < 0 {
		return it.FilePath
	}

	return it.FilePath[idx+1:]
}

// Location returns "path:line".
func (it Item) Location() string {
	return it.FilePath + ":" + strconv.Itoa(it.Line)
}

// IssueURL expands template by replacing every "{id}" with the item's issue
// ID. Returns "" when the item has no issue or the template has no
// placeholder.
func (it Item) IssueURL(template string) string {
	if it.IssueID == "" || !strings.Contains(template, "{id}") {
		return ""
	}

	return strings.ReplaceAll(template, "{id}", it.IssueID)
}

// DisplayText renders the item back in marker syntax, e.g.
// "TODO(@john priority:high category:bug): Fix auth".
func (it Item) DisplayText() string {
	var parts []string

	if it.Assignee != "" {
		parts = append(parts, "@"+it.Assignee)
	}

	if it.Priority != "" {
		parts = append(parts, KeyPriority+":"+strings.ToLower(it.Priority))
	}

	if it.Category != "" {
		parts = append(parts, KeyCategory+":"+it.Category)
	}

	if it.HasDue() {
		parts = append(parts, KeyDue+":"+it.Due.String())
	}

	if it.IssueID != "" {
		parts = append(parts, KeyIssue+":"+it.IssueID)
	}

	for _, key := range slices.Sorted(maps.Keys(it.Tags)) {
		parts = append(parts, key+":"+it.Tags[key])
	}

	marker := it.Marker
	if marker == "" {
		marker = DefaultMarker
	}

	var b strings.Builder

	b.WriteString(marker)

	if len(parts) > 0 {
		b.WriteString("(")
		b.WriteString(strings.Join(parts, " "))
		b.WriteString(")")
	}

	b.WriteString(": ")
	b.WriteString(it.Description)

	return b.String()
}
