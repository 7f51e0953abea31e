package todo_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/calvinalkan/todoscan/internal/todo"
)

var fixedNow = time.Date(2025, time.March, 14, 22, 30, 0, 0, time.UTC)

func newParser(issuePattern string) *todo.Parser {
	return todo.NewParser(todo.ParserConfig{
		IssuePattern: issuePattern,
		Now:          func() time.Time { return fixedNow },
	})
}

func Test_ParseLine_Extracts_Metadata_When_Line_Is_Marker_Comment(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		line string
		want todo.Item
	}{
		{
			name: "full metadata",
			line: "// TODO(@john priority:high category:bug): Fix auth token expiry",
			want: todo.Item{Description: "Fix auth token expiry", Assignee: "john", Priority: "HIGH", Category: "bug"},
		},
		{
			name: "no metadata",
			line: "// TODO: Add unit tests",
			want: todo.Item{Description: "Add unit tests"},
		},
		{
			name: "case insensitive keyword and value",
			line: "// todo(PRIORITY:HIGH): Case test",
			want: todo.Item{Description: "Case test", Priority: "HIGH"},
		},
		{
			name: "extra whitespace everywhere",
			line: "//   TODO   (  @mike  priority:low  )  :   Spacing test  ",
			want: todo.Item{Description: "Spacing test", Assignee: "mike", Priority: "LOW"},
		},
		{
			name: "empty metadata block",
			line: "// TODO(): Nothing inside",
			want: todo.Item{Description: "Nothing inside"},
		},
		{
			name: "custom tags kept lower-cased",
			line: "// TODO(Risk:high estimate:3d): Complex todo",
			want: todo.Item{Description: "Complex todo", Tags: map[string]string{"risk": "high", "estimate": "3d"}},
		},
		{
			name: "tag value keeps everything after first colon",
			line: "// TODO(link:http://example.com/a): Read docs",
			want: todo.Item{Description: "Read docs", Tags: map[string]string{"link": "http://example.com/a"}},
		},
		{
			name: "assigned key sets assignee",
			line: "// TODO(assigned:maria): Review",
			want: todo.Item{Description: "Review", Assignee: "maria"},
		},
		{
			name: "explicit issue",
			line: "// TODO(issue:PROJ-123): Fix bug",
			want: todo.Item{Description: "Fix bug", IssueID: "PROJ-123"},
		},
		{
			name: "malformed tokens ignored",
			line: "// TODO(hello :empty @ann): Tokens",
			want: todo.Item{Description: "Tokens", Assignee: "ann"},
		},
		{
			name: "description keeps later colons",
			line: "# TODO: note: colons stay",
			want: todo.Item{Description: "note: colons stay"},
		},
		{
			name: "block comment prefix",
			line: "/* TODO(category:perf): Cache this */",
			want: todo.Item{Description: "Cache this", Category: "perf"},
		},
		{
			name: "block comment closer with empty priority value",
			line: "/* TODO(priority:): empty prio */",
			want: todo.Item{Description: "empty prio"},
		},
		{
			name: "html comment closer",
			line: "<!-- TODO(@ann): Fix layout -->",
			want: todo.Item{Description: "Fix layout", Assignee: "ann"},
		},
		{
			name: "closer kept after line comment prefix",
			line: "// TODO: strip */ only in block comments */",
			want: todo.Item{Description: "strip */ only in block comments */"},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := newParser("").ParseLine(tt.line, "src/app/test.go", 7)
			if !ok {
				t.Fatalf("ParseLine(%q) returned no item", tt.line)
			}

			want := tt.want
			want.Marker = "TODO"
			want.FilePath = "src/app/test.go"
			want.Line = 7
			want.FullText = strings.TrimSpace(tt.line)

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("item mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_ParseLine_Returns_No_Item_When_Grammar_Fails(t *testing.T) {
	t.Parallel()

	for _, line := range []string{
		"",
		"// This is just a regular comment",
		"TODO: no comment token",
		"// TODO without colon",
		"// TODO:",
		"// TODO:    ",
		"// TODO(priority:high):",
		"/* TODO: */",
		"<!-- TODO: -->",
		"// TODOS: plural is not a marker",
		"fmt.Println(\"TODO: inside a string\")",
	} {
		if item, ok := newParser("").ParseLine(line, "a.go", 1); ok {
			t.Errorf("ParseLine(%q) = %+v, want no item", line, item)
		}
	}
}

func Test_ParseLine_Last_Token_Wins_When_Keys_Repeat(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		line         string
		wantPriority string
		wantAssignee string
		wantRisk     string
	}{
		{line: "// TODO(@x priority:y priority:z): d", wantPriority: "Z", wantAssignee: "x"},
		{line: "// TODO(@a assignee:b): d", wantAssignee: "b"},
		{line: "// TODO(assigned:b @a): d", wantAssignee: "a"},
		{line: "// TODO(risk:low Risk:high): d", wantRisk: "high"},
	} {
		item, ok := newParser("").ParseLine(tt.line, "a.go", 1)
		if !ok {
			t.Fatalf("ParseLine(%q) returned no item", tt.line)
		}

		if item.Priority != tt.wantPriority || item.Assignee != tt.wantAssignee {
			t.Errorf("%q: priority=%q assignee=%q, want priority=%q assignee=%q",
				tt.line, item.Priority, item.Assignee, tt.wantPriority, tt.wantAssignee)
		}

		risk, _ := item.Tag("risk")
		if risk != tt.wantRisk {
			t.Errorf("%q: risk=%q, want=%q", tt.line, risk, tt.wantRisk)
		}
	}
}

func Test_ParseLine_Resolves_Due_Dates_When_Due_Key_Present(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		value string
		want  civil.Date
	}{
		{value: "today", want: civil.Date{Year: 2025, Month: time.March, Day: 14}},
		{value: "TOMORROW", want: civil.Date{Year: 2025, Month: time.March, Day: 15}},
		{value: "2023-12-25", want: civil.Date{Year: 2023, Month: time.December, Day: 25}},
		{value: "2023-02-30", want: civil.Date{}},
		{value: "next-week", want: civil.Date{}},
		{value: "", want: civil.Date{}},
	} {
		item, ok := newParser("").ParseLine("// TODO(due:"+tt.value+"): Finish", "a.go", 1)
		if !ok {
			t.Fatalf("due:%s returned no item", tt.value)
		}

		if item.Due != tt.want {
			t.Errorf("due:%s parsed as %v, want %v", tt.value, item.Due, tt.want)
		}

		if _, isTag := item.Tag("due"); isTag {
			t.Errorf("due:%s leaked into tags", tt.value)
		}
	}
}

func Test_ParseLine_Due_Today_Uses_Clock_When_No_Clock_Configured(t *testing.T) {
	t.Parallel()

	before := civil.DateOf(time.Now())
	item, _ := todo.NewParser(todo.ParserConfig{}).ParseLine("// TODO(due:today): Finish this today", "a.go", 1)
	after := civil.DateOf(time.Now())

	if item.Due != before && item.Due != after {
		t.Errorf("Due=%v, want current date", item.Due)
	}
}

func Test_ParseLine_Infers_Issue_When_Pattern_Configured(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name    string
		pattern string
		line    string
		want    string
	}{
		{name: "pattern match", pattern: todo.DefaultIssuePattern, line: "// TODO: Fix bug related to PROJ-456", want: "PROJ-456"},
		{name: "first match wins", pattern: todo.DefaultIssuePattern, line: "// TODO: AB-1 then CD-2", want: "AB-1"},
		{name: "explicit beats pattern", pattern: todo.DefaultIssuePattern, line: "// TODO(issue:GH-9): See PROJ-456", want: "GH-9"},
		{name: "empty pattern", pattern: "", line: "// TODO: Fix bug PROJ-123", want: ""},
		{name: "invalid pattern", pattern: "[A-Z+(", line: "// TODO: Fix bug PROJ-123", want: ""},
		{name: "no match", pattern: todo.DefaultIssuePattern, line: "// TODO: nothing here", want: ""},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			item, ok := newParser(tt.pattern).ParseLine(tt.line, "a.go", 1)
			if !ok {
				t.Fatalf("ParseLine(%q) returned no item", tt.line)
			}

			if got := item.IssueID; got != tt.want {
				t.Errorf("IssueID=%q, want=%q", got, tt.want)
			}
		})
	}
}

func Test_ParseLine_Uses_Configured_Markers_And_Prefixes(t *testing.T) {
	t.Parallel()

	p := todo.NewParser(todo.ParserConfig{
		Markers:         []string{"TODO", "FIXME", " "},
		CommentPrefixes: []string{"%"},
	})

	item, ok := p.ParseLine("% fixme(@bob): Broken edge case", "x.tex", 3)
	if !ok {
		t.Fatal("FIXME after % should parse")
	}

	if got, want := item.Marker, "FIXME"; got != want {
		t.Errorf("Marker=%q, want=%q", got, want)
	}

	if _, ok := p.ParseLine("// TODO: slash no longer a prefix", "x.tex", 4); ok {
		t.Error("// should not be recognized when prefixes are overridden")
	}
}

func Test_ParseLines_Keeps_Order_And_One_Based_Lines(t *testing.T) {
	t.Parallel()

	lines := []string{
		"package example",
		"// TODO(@john priority:high): Fix login",
		"func Example() {",
		"\t// TODO(category:feature): Add dark mode",
		"}",
		"// TODO: Simple todo",
	}

	items := newParser("").ParseLines(lines, "example.go")

	type pos struct {
		Line        int
		Description string
	}

	got := make([]pos, len(items))
	for i, it := range items {
		got[i] = pos{Line: it.Line, Description: it.Description}
	}

	want := []pos{{2, "Fix login"}, {4, "Add dark mode"}, {6, "Simple todo"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func Test_ParseReader_Matches_ParseLines_When_Input_Has_CRLF(t *testing.T) {
	t.Parallel()

	lines := []string{"x := 1", "// TODO(priority:low): one", "", "# TODO: two", "// TODO: three"}
	p := newParser("")

	got, err := p.ParseReader(strings.NewReader(strings.Join(lines, "\r\n")), "f.py")
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}

	want := p.ParseLines(lines, "f.py")
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("ParseReader mismatch (-want +got):\n%s", diff)
	}

	if got, want := len(got), 3; got != want {
		t.Errorf("len=%d, want=%d", got, want)
	}
}

func Test_Parser_Is_Safe_For_Concurrent_Use(t *testing.T) {
	t.Parallel()

	p := newParser(todo.DefaultIssuePattern)
	line := "// TODO(@ann priority:medium risk:low): Handle ABC-1"

	var wg sync.WaitGroup

	results := make([]todo.Item, 32)

	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i], _ = p.ParseLine(line, "c.go", i+1)
		}()
	}

	wg.Wait()

	for i, it := range results {
		if it.Line != i+1 || it.IssueID != "ABC-1" || it.Priority != "MEDIUM" {
			t.Errorf("result %d = %+v", i, it)
		}
	}
}
