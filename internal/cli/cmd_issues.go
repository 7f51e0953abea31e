package cli

import (
	"cmp"
	"context"
	"slices"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/todoscan/internal/todo"
)

// IssuesCmd returns the issues command.
func IssuesCmd(a *app) *Command {
	fs := flag.NewFlagSet("issues", flag.ContinueOnError)
	filters := addFilterFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "issues [paths...] [flags]",
		Short: "List issue IDs referenced by TODO items",
		Long: `List every issue ID referenced by a TODO item, sorted by ID, with the
locations that mention it. When issue_url_template is configured the
issue URL is printed next to the ID.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			items, err := a.scanItems(ctx, o, args)
			if err != nil {
				return err
			}

			items, err = filters.apply(items, a.reg)
			if err != nil {
				return err
			}

			byIssue := map[string][]todo.Item{}

			for _, it := range items {
				if it.IssueID != "" {
					byIssue[it.IssueID] = append(byIssue[it.IssueID], it)
				}
			}

			ids := make([]string, 0, len(byIssue))
			for id := range byIssue {
				ids = append(ids, id)
			}

			slices.SortFunc(ids, cmp.Compare[string])

			for _, id := range ids {
				group := byIssue[id]

				if url := group[0].IssueURL(a.cfg.IssueURLTemplate); url != "" {
					o.Println(id, url)
				} else {
					o.Println(id)
				}

				for _, it := range group {
					o.Println("  " + it.Location() + " " + it.Description)
				}
			}

			return nil
		},
	}
}
