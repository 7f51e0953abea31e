package cli

import (
	"context"
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/todoscan/internal/export"
)

// ExportCmd returns the export command.
func ExportCmd(a *app) *Command {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	filters := addFilterFlags(fs)
	format := fs.StringP("format", "f", "csv", "Output format: csv, md or yaml")
	extended := fs.Bool("extended", false, "CSV only: add Due Date and Issue columns")
	output := fs.StringP("output", "o", "", "Write to this file (atomically) instead of stdout")

	return &Command{
		Flags: fs,
		Usage: "export [paths...] [flags]",
		Short: "Export TODO items as CSV, Markdown or YAML",
		Long: `Export TODO items as CSV, Markdown or YAML.

Markdown groups items by priority in configured order, then unconfigured
priorities, then items without priority. With --output the file is replaced
atomically; parent directories are created.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			f, err := export.ParseFormat(*format)
			if err != nil {
				return err
			}

			items, err := a.scanItems(ctx, o, args)
			if err != nil {
				return err
			}

			items, err = filters.apply(items, a.reg)
			if err != nil {
				return err
			}

			text, err := export.Render(items, f, export.Options{Extended: *extended, Registry: a.reg})
			if err != nil {
				return err
			}

			if *output == "" {
				o.Printf("%s", text)

				return nil
			}

			path := a.resolve(*output)

			err = a.fs.MkdirAll(filepath.Dir(path), 0o755)
			if err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}

			err = a.fs.WriteFileAtomic(path, []byte(text), 0o644)
			if err != nil {
				return fmt.Errorf("writing export: %w", err)
			}

			o.Printf("Exported %d %s to %s\n", len(items), plural(len(items), "item"), a.relative(path))

			return nil
		},
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}

	return word + "s"
}
