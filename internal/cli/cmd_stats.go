package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/todoscan/internal/query"
)

// StatsCmd returns the stats command.
func StatsCmd(a *app) *Command {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	filters := addFilterFlags(fs)

	return &Command{
		Flags: fs,
		Usage: "stats [paths...] [flags]",
		Short: "Summarize TODO items",
		Long:  "Print totals, per-priority counts in configured order, missing metadata and due-date counts.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			items, err := a.scanItems(ctx, o, args)
			if err != nil {
				return err
			}

			items, err = filters.apply(items, a.reg)
			if err != nil {
				return err
			}

			stats := query.ComputeStatistics(items, a.reg)

			o.Println(stats.Summary(a.reg))
			o.Println()
			o.Printf("%-16s %d\n", "total", stats.Total)

			for _, name := range a.reg.Names() {
				o.Printf("%s %d\n", a.painter(name)(fmt.Sprintf("%-16s", name)), stats.PerPriority[name])
			}

			unknown := 0

			for _, it := range items {
				if it.Priority != "" && !a.reg.Contains(it.Priority) {
					unknown++
				}
			}

			if unknown > 0 {
				o.Printf("%-16s %d\n", "unconfigured", unknown)
			}

			o.Printf("%-16s %d\n", "no priority", stats.MissingPriority)
			o.Printf("%-16s %d\n", "unassigned", stats.MissingAssignee)

			dueCounts := map[query.DueState]int{}
			today := a.today()

			for _, it := range items {
				dueCounts[query.DueStatus(it, today)]++
			}

			o.Printf("%-16s %d\n", "overdue", dueCounts[query.DueOverdue])
			o.Printf("%-16s %d\n", "due soon", dueCounts[query.DueSoon])

			return nil
		},
	}
}
