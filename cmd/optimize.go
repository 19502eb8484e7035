package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kilianp07/slotplan/app"
	"github.com/kilianp07/slotplan/pkg/export"
)

var optimizeOpts struct {
	trucks     string
	out        string
	iterations int
	tenure     int
	trials     int
	seed       uint64
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Search the best arrival segment of every truck",
	RunE:  runOptimize,
}

func init() {
	f := optimizeCmd.Flags()
	f.StringVar(&optimizeOpts.trucks, "trucks", "", "truck list CSV (overrides inputs.trucks)")
	f.StringVarP(&optimizeOpts.out, "out", "o", "", "write the schedule to a .csv or .json file")
	f.IntVar(&optimizeOpts.iterations, "iterations", 0, "override search.max_iterations")
	f.IntVar(&optimizeOpts.tenure, "tenure", 0, "override search.tabu_tenure")
	f.IntVar(&optimizeOpts.trials, "trials", 0, "override simulation.trial_count")
	f.Uint64Var(&optimizeOpts.seed, "seed", 0, "override search.seed")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, svc, err := loadService()
	if err != nil {
		return err
	}
	defer closeService(cmd, svc)
	if optimizeOpts.iterations > 0 {
		cfg.Search.MaxIterations = optimizeOpts.iterations
	}
	if optimizeOpts.tenure > 0 {
		cfg.Search.TabuTenure = optimizeOpts.tenure
	}
	if optimizeOpts.trials > 0 {
		cfg.Simulation.TrialCount = optimizeOpts.trials
	}
	if optimizeOpts.seed > 0 {
		cfg.Search.Seed = optimizeOpts.seed
	}

	trucks, err := svc.LoadTrucks(optimizeOpts.trucks)
	if err != nil {
		return err
	}
	svc.ServeMetrics(ctx)
	out, err := svc.Optimize(ctx, trucks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if len(out.Assignments) == 0 {
		return err
	}
	w := cmd.OutOrStdout()
	if errors.Is(err, context.Canceled) {
		fmt.Fprintf(w, "interrupted after %d iterations, showing best schedule so far\n", out.Result.Iterations)
	}
	printOutcome(w, out)
	if optimizeOpts.out != "" {
		rep := export.Report{
			RunID:         out.RunID,
			BestTotal:     out.Result.BestScore.Total,
			FinishSegment: out.Result.BestScore.Finish.String(),
			Assignments:   out.Assignments,
		}
		if err := export.WriteFile(optimizeOpts.out, rep); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Fprintf(w, "schedule written to %s\n", optimizeOpts.out)
	}
	return nil
}

func printOutcome(w io.Writer, out app.Outcome) {
	res := out.Result
	fmt.Fprintf(w, "Run        : %s (seed %d)\n", out.RunID, out.Seed)
	fmt.Fprintf(w, "Iterations : %d (%d accepted, %d tabu hits)\n", res.Iterations, res.Accepted, res.TabuHits)
	fmt.Fprintf(w, "Best total : %.2f min\n", res.BestScore.Total)
	fmt.Fprintf(w, "Finish     : %s\n", res.BestScore.Finish)

	table := tablewriter.NewWriter(w)
	table.SetBorder(false)
	table.SetHeader([]string{"Truck", "Segment", "Start", "End"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, a := range out.Assignments {
		table.Append([]string{a.TruckID, a.Segment, a.SegmentStart, a.SegmentEnd})
	}
	table.Render()
	fmt.Fprintf(w, "%d trucks scheduled\n", len(out.Assignments))
}
