package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var estimateOpts struct {
	hour    int
	trucks  int
	segment string
	trials  int
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the base time of one truck for an hour and occupancy",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := loadService()
		if err != nil {
			return err
		}
		defer closeService(cmd, svc)

		est, err := svc.Estimate(cmd.Context(), estimateOpts.hour, estimateOpts.trucks, estimateOpts.segment, estimateOpts.trials)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "hour %02d, %d trucks, segment %s\n", estimateOpts.hour, estimateOpts.trucks, estimateOpts.segment)
		fmt.Fprintf(w, "median  : %.2f min\n", est.Median)
		fmt.Fprintf(w, "std dev : %.2f min\n", est.StdDev)
		fmt.Fprintf(w, "trials  : %d (%d excluded)\n", est.Trials, est.Excluded)
		return nil
	},
}

func init() {
	f := estimateCmd.Flags()
	f.IntVar(&estimateOpts.hour, "hour", 8, "hour of day of the visit")
	f.IntVar(&estimateOpts.trucks, "trucks", 1, "number of trucks present in the segment")
	f.StringVar(&estimateOpts.segment, "segment", "", "business segment of the truck")
	f.IntVar(&estimateOpts.trials, "trials", 0, "trial count (0 uses simulation.trial_count)")
	_ = estimateCmd.MarkFlagRequired("segment")
	rootCmd.AddCommand(estimateCmd)
}
