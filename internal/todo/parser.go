package todo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/calvinalkan/todoscan/internal/priority"
)

// DefaultMarker is the marker keyword used when none are configured.
const DefaultMarker = "TODO"

// DefaultIssuePattern matches Jira-style keys such as PROJ-123.
const DefaultIssuePattern = `[A-Z]+-\d+`

// DefaultCommentPrefixes are the comment-opening tokens a marker may follow.
func DefaultCommentPrefixes() []string {
	return []string{"//", "#", "/*", "--", "<!--", ";"}
}

// commentClosers pairs block comment openers with the token that ends them.
var commentClosers = map[string]string{
	"/*":   "*/",
	"<!--": "-->",
}

// ParserConfig configures a [Parser]. The zero value parses "TODO" markers
// after the default comment prefixes and does not infer issue IDs.
type ParserConfig struct {
	// Markers are the recognized keywords, matched case-insensitively.
	Markers []string
	// CommentPrefixes are the tokens that must precede a marker.
	CommentPrefixes []string
	// IssuePattern is applied to the description when no explicit issue
	// tag is present. Empty or invalid patterns disable inference.
	IssuePattern string
	// Now returns the current time for relative due dates. Defaults to
	// [time.Now].
	Now func() time.Time
}

// Parser extracts items from source lines. A Parser is immutable and safe
// for concurrent use.
type Parser struct {
	line  *regexp.Regexp
	issue *regexp.Regexp
	now   func() time.Time
}

// NewParser compiles cfg into a parser. It never fails: an issue pattern
// that does not compile is treated as no pattern.
func NewParser(cfg ParserConfig) *Parser {
	markers := nonEmpty(cfg.Markers)
	if len(markers) == 0 {
		markers = []string{DefaultMarker}
	}

	prefixes := nonEmpty(cfg.CommentPrefixes)
	if len(prefixes) == 0 {
		prefixes = DefaultCommentPrefixes()
	}

	// Groups: 1 comment prefix, 2 marker, 3 metadata block, 4 description.
	expr := `(?i)(` + alternation(prefixes) + `)\s*(` + alternation(markers) + `)\s*(?:\((.*?)\))?\s*:(.*)`

	p := &Parser{
		line: regexp.MustCompile(expr),
		now:  cfg.Now,
	}

	if p.now == nil {
		p.now = time.Now
	}

	if cfg.IssuePattern != "" {
		re, err := regexp.Compile(cfg.IssuePattern)
		if err == nil {
			p.issue = re
		}
	}

	return p
}

// ParseLine parses a single line. ok is false when the line is not a marker
// comment or its description is empty. A block comment closer matching the
// opening prefix ("*/" for "/*") is not part of the description.
func (p *Parser) ParseLine(line, filePath string, lineNumber int) (Item, bool) {
	m := p.line.FindStringSubmatch(line)
	if m == nil {
		return Item{}, false
	}

	description := strings.TrimSpace(m[4])
	if closer, ok := commentClosers[m[1]]; ok {
		description = strings.TrimSpace(strings.TrimSuffix(description, closer))
	}

	if description == "" {
		return Item{}, false
	}

	var b itemBuilder

	for _, token := range strings.Fields(m[3]) {
		b.apply(token, p.now)
	}

	if b.issueID == "" && p.issue != nil {
		b.issueID = p.issue.FindString(description)
	}

	return Item{
		Marker:      strings.ToUpper(m[2]),
		Description: description,
		Assignee:    b.assignee,
		Priority:    b.priority,
		Category:    b.category,
		IssueID:     b.issueID,
		Due:         b.due,
		Tags:        b.tags,
		FilePath:    filePath,
		Line:        lineNumber,
		FullText:    strings.TrimSpace(line),
	}, true
}

// ParseLines parses lines in order and returns the items found. Line numbers
// are 1-based positions in lines.
func (p *Parser) ParseLines(lines []string, filePath string) []Item {
	var items []Item

	for i, line := range lines {
		if item, ok := p.ParseLine(line, filePath, i+1); ok {
			items = append(items, item)
		}
	}

	return items
}

// ParseReader parses r line by line. Lines may be terminated by "\n" or
// "\r\n" and have no length limit.
func (p *Parser) ParseReader(r io.Reader, filePath string) ([]Item, error) {
	reader := bufio.NewReader(r)

	var items []Item

	lineNumber := 0

	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			lineNumber++

			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if item, ok := p.ParseLine(line, filePath, lineNumber); ok {
				items = append(items, item)
			}
		}

		if errors.Is(err, io.EOF) {
			return items, nil
		}

		if err != nil {
			return items, fmt.Errorf("reading %s: %w", filePath, err)
		}
	}
}

// itemBuilder folds metadata tokens left to right. Later tokens overwrite
// earlier ones of the same kind.
type itemBuilder struct {
	assignee string
	priority string
	category string
	issueID  string
	due      civil.Date
	tags     map[string]string
}

func (b *itemBuilder) apply(token string, now func() time.Time) {
	if name, ok := strings.CutPrefix(token, "@"); ok {
		b.assignee = name

		return
	}

	key, value, ok := strings.Cut(token, ":")
	if !ok || key == "" {
		return
	}

	key = strings.ToLower(key)

	switch key {
	case KeyPriority:
		b.priority = priority.Canonical(value)
	case KeyCategory:
		b.category = value
	case KeyAssignee, KeyAssigned:
		b.assignee = value
	case KeyDue:
		b.due = parseDue(value, now)
	case KeyIssue:
		b.issueID = value
	default:
		if b.tags == nil {
			b.tags = make(map[string]string)
		}

		b.tags[key] = value
	}
}

// parseDue resolves "today", "tomorrow" or an ISO date. Anything else yields
// the zero date.
func parseDue(value string, now func() time.Time) civil.Date {
	switch {
	case strings.EqualFold(value, "today"):
		return civil.DateOf(now())
	case strings.EqualFold(value, "tomorrow"):
		return civil.DateOf(now()).AddDays(1)
	}

	d, err := civil.ParseDate(value)
	if err != nil {
		return civil.Date{}
	}

	return d
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}

	return strings.Join(quoted, "|")
}

func nonEmpty(values []string) []string {
	var out []string

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}

	return out
}
