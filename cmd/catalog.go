package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the delay sources used by the simulator",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, svc, err := loadService()
		if err != nil {
			return err
		}
		defer closeService(cmd, svc)

		cat := svc.Catalog()
		w := cmd.OutOrStdout()
		table := tablewriter.NewWriter(w)
		table.SetBorder(false)
		table.SetHeader([]string{"Source", "Family", "Shape", "Loc", "Scale", "P", "Rule", "Median"})
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, s := range cat.Sources() {
			table.Append([]string{
				s.Name,
				string(s.Family),
				fmtFloat(s.Shape),
				fmtFloat(s.Loc),
				fmtFloat(s.Scale),
				fmtFloat(s.Probability),
				string(s.Rule),
				fmtFloat(s.Median()),
			})
		}
		table.Render()
		win := svc.Window()
		fmt.Fprintf(w, "%d sources, %d segments in the window\n", cat.Len(), win.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }
