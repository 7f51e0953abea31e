package todo_test

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/calvinalkan/todoscan/internal/todo"
)

func Test_Item_DisplayText_Renders_Marker_Syntax(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name string
		item todo.Item
		want string
	}{
		{
			name: "plain",
			item: todo.Item{Marker: "TODO", Description: "Add tests"},
			want: "TODO: Add tests",
		},
		{
			name: "standard fields",
			item: todo.Item{Marker: "TODO", Description: "Fix", Assignee: "john", Priority: "HIGH", Category: "bug"},
			want: "TODO(@john priority:high category:bug): Fix",
		},
		{
			name: "due issue and sorted tags",
			item: todo.Item{
				Marker:      "FIXME",
				Description: "Ship",
				Due:         civil.Date{Year: 2024, Month: time.May, Day: 2},
				IssueID:     "OPS-7",
				Tags:        map[string]string{"risk": "low", "estimate": "2h"},
			},
			want: "FIXME(due:2024-05-02 issue:OPS-7 estimate:2h risk:low): Ship",
		},
		{
			name: "missing marker falls back to default",
			item: todo.Item{Description: "x"},
			want: "TODO: x",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.item.DisplayText(); got != tt.want {
				t.Errorf("DisplayText()=%q, want=%q", got, tt.want)
			}
		})
	}
}

func Test_Item_FileName_Strips_Directories(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]string{
		"src/main/App.kt":      "App.kt",
		`C:\work\repo\main.go`: "main.go",
		"main.go":              "main.go",
		"dir/":                 "",
	} {
		if got := (todo.Item{FilePath: path}).FileName(); got != want {
			t.Errorf("FileName(%q)=%q, want=%q", path, got, want)
		}
	}
}

func Test_Item_IsPlain_Ignores_Tags_And_Due(t *testing.T) {
	t.Parallel()

	plain := todo.Item{Description: "x", Tags: map[string]string{"risk": "low"}, IssueID: "A-1"}
	if !plain.IsPlain() {
		t.Error("item with only tags and issue should be plain")
	}

	for _, it := range []todo.Item{
		{Description: "x", Assignee: "a"},
		{Description: "x", Priority: "LOW"},
		{Description: "x", Category: "c"},
	} {
		if it.IsPlain() {
			t.Errorf("%+v should not be plain", it)
		}
	}
}

func Test_Item_IssueURL_Expands_Template(t *testing.T) {
	t.Parallel()

	it := todo.Item{IssueID: "PROJ-9"}

	if got, want := it.IssueURL("https://jira.example.com/browse/{id}"), "https://jira.example.com/browse/PROJ-9"; got != want {
		t.Errorf("IssueURL=%q, want=%q", got, want)
	}

	if got := it.IssueURL("https://jira.example.com/"); got != "" {
		t.Errorf("template without {id} should yield empty URL, got %q", got)
	}

	if got := (todo.Item{}).IssueURL("https://x/{id}"); got != "" {
		t.Errorf("item without issue should yield empty URL, got %q", got)
	}
}

func Test_Item_Tag_Lookup_Is_Case_Insensitive(t *testing.T) {
	t.Parallel()

	it := todo.Item{Tags: map[string]string{"risk": "High"}}

	v, ok := it.Tag("RISK")
	if !ok || v != "High" {
		t.Errorf("Tag(RISK)=(%q,%v), want=(High,true)", v, ok)
	}

	if _, ok := (todo.Item{}).Tag("risk"); ok {
		t.Error("nil tag map should not report tags")
	}

	if got, want := (todo.Item{FilePath: "a/b.go", Line: 12}).Location(), "a/b.go:12"; got != want {
		t.Errorf("Location=%q, want=%q", got, want)
	}
}
