package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"
)

var errNegativeLimit = errors.New("--limit must be non-negative")

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	filters := addFilterFlags(fs)
	limit := fs.IntP("limit", "n", 0, "Maximum items to show (0 = all)")

	return &Command{
		Flags: fs,
		Usage: "ls [paths...] [flags]",
		Short: "List TODO items",
		Long: `List TODO items found under the given paths (default: working directory).

Each line reads "path:line [PRIORITY] @assignee [category] description",
followed by the due date and issue ID when present.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if *limit < 0 {
				return errNegativeLimit
			}

			items, err := a.scanItems(ctx, o, args)
			if err != nil {
				return err
			}

			items, err = filters.apply(items, a.reg)
			if err != nil {
				return err
			}

			if *limit > 0 && len(items) > *limit {
				items = items[:*limit]
			}

			today := a.today()

			for _, it := range items {
				o.Println(formatItem(it, today, a.painter(it.Priority)))
			}

			return nil
		},
	}
}
