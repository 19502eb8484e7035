package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/slotplan/core/mission"
)

var missionOpts struct {
	departure string
	distance  float64
	back      float64
	segment   string
	trials    int
}

var missionCmd = &cobra.Command{
	Use:   "mission",
	Short: "Simulate a full mission: road, base visit and return",
	RunE:  runMission,
}

func init() {
	f := missionCmd.Flags()
	f.StringVar(&missionOpts.departure, "departure", "", `departure time, "YYYY-MM-DD HH:MM"`)
	f.Float64Var(&missionOpts.distance, "distance", 0, "road distance to the base in km")
	f.Float64Var(&missionOpts.back, "return-distance", 0, "distance driven after the base in km (0 means same as --distance)")
	f.StringVar(&missionOpts.segment, "segment", "", "business segment of the truck")
	f.IntVar(&missionOpts.trials, "trials", 0, "trial count (0 uses mission.trials)")
	_ = missionCmd.MarkFlagRequired("departure")
	_ = missionCmd.MarkFlagRequired("segment")
	rootCmd.AddCommand(missionCmd)
}

func runMission(cmd *cobra.Command, args []string) error {
	dep, err := mission.ParseDeparture(missionOpts.departure, time.Local)
	if err != nil {
		return err
	}
	_, svc, err := loadService()
	if err != nil {
		return err
	}
	defer closeService(cmd, svc)

	res, err := svc.Mission(cmd.Context(), mission.Request{
		Departure:  dep,
		DistanceKm: missionOpts.distance,
		ReturnKm:   missionOpts.back,
		Segment:    missionOpts.segment,
		Trials:     missionOpts.trials,
	})
	if err != nil {
		return err
	}
	const layout = "2006-01-02 15:04"
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "outbound      : %s\n", res.Outbound)
	fmt.Fprintf(w, "arrival       : %s (%.1f trucks on average)\n", res.ArrivalAt.Format(layout), res.MeanTrucks)
	fmt.Fprintf(w, "return        : %s\n", res.Return)
	fmt.Fprintf(w, "duration P5   : %s\n", res.P5.Round(time.Minute))
	fmt.Fprintf(w, "duration P50  : %s\n", res.P50.Round(time.Minute))
	fmt.Fprintf(w, "duration P95  : %s\n", res.P95.Round(time.Minute))
	fmt.Fprintf(w, "mean / stddev : %s / %s\n", res.Mean.Round(time.Minute), res.StdDev.Round(time.Minute))
	fmt.Fprintf(w, "end           : %s / %s / %s\n",
		res.EarliestEnd.Format(layout), res.MedianEnd.Format(layout), res.LatestEnd.Format(layout))
	fmt.Fprintf(w, "trials        : %d (%d excluded)\n", res.Trials, res.Excluded)
	return nil
}
