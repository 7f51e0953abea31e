package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/calvinalkan/todoscan/internal/priority"
	"github.com/calvinalkan/todoscan/internal/todo"
)

// Format is an export format name.
type Format string

// Supported formats.
const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatYAML     Format = "yaml"
)

// ErrUnknownFormat is returned by [ParseFormat] for unsupported names.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "csv", "md"/"markdown" and "yaml"/"yml".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s (want csv|md|yaml)", ErrUnknownFormat, name)
	}
}

// Options configures [Render].
type Options struct {
	// Extended selects the extended CSV columns.
	Extended bool
	// Registry orders Markdown sections.
	Registry *priority.Registry
}

// Render renders items in format f.
func Render(items []todo.Item, f Format, opts Options) (string, error) {
	switch f {
	case FormatCSV:
		return CSV(items, CSVOptions{Extended: opts.Extended}), nil
	case FormatMarkdown:
		return Markdown(items, opts.Registry), nil
	case FormatYAML:
		return YAML(items)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}
