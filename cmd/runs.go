package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kilianp07/slotplan/infra/runstore"
)

var runsOpts struct {
	limit int
	since time.Duration
	id    string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded optimisation runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := loadService()
		if err != nil {
			return err
		}
		defer closeService(cmd, svc)

		q := runstore.Query{ID: runsOpts.id, Limit: runsOpts.limit}
		if runsOpts.since > 0 {
			q.Start = time.Now().Add(-runsOpts.since)
		}
		recs, err := svc.Runs(cmd.Context(), q)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(w, "no runs recorded")
			return nil
		}
		table := tablewriter.NewWriter(w)
		table.SetBorder(false)
		table.SetHeader([]string{"Run", "Started", "Trucks", "Iter", "Best (min)", "Finish", "Canceled"})
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, r := range recs {
			table.Append([]string{
				r.ID,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				strconv.Itoa(r.Trucks),
				strconv.Itoa(r.Iterations),
				strconv.FormatFloat(r.BestTotal, 'f', 2, 64),
				r.Finish,
				strconv.FormatBool(r.Canceled),
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	f := runsCmd.Flags()
	f.IntVar(&runsOpts.limit, "limit", 20, "show at most the last N runs (0 for all)")
	f.DurationVar(&runsOpts.since, "since", 0, "only runs started within this duration, e.g. 24h")
	f.StringVar(&runsOpts.id, "id", "", "show a single run")
	rootCmd.AddCommand(runsCmd)
}
