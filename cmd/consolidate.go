package cmd

import (
	"fmt"

	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/pipeline"

	"github.com/spf13/cobra"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Write the computed Monthly and Summary sheets into the workbook",
	RunE:  runConsolidate,
}

func init() {
	rootCmd.AddCommand(consolidateCmd)
}

func runConsolidate(_ *cobra.Command, _ []string) error {
	opts, err := metricOptions()
	if err != nil {
		return err
	}
	year := reportYear()
	return modify(func(lr *pipeline.LoadResult) error {
		annual, err := pipeline.Consolidate(lr.Book, year, opts)
		if err != nil {
			return err
		}
		fmt.Printf("  Consolidated %d: %d events, revenue %s, net profit %s\n",
			year, annual.EventCount, cli.FormatMoney(annual.Revenue), cli.FormatMoney(annual.NetProfit))
		return nil
	})
}
