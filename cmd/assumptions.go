package cmd

import (
	"fmt"

	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"

	"github.com/spf13/cobra"
)

var assumptionsCmd = &cobra.Command{
	Use:   "assumptions",
	Short: "Business defaults: average price, variable and fixed costs",
	RunE:  runAssumptionsShow,
}

var assumptionsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the assumptions sheet",
	RunE:  runAssumptionsShow,
}

var assumptionsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change assumptions; unset flags are left as they are",
	RunE:  runAssumptionsSet,
}

func init() {
	f := assumptionsSetCmd.Flags()
	f.Float64("average-price", 0, "Average event price")
	f.Float64("variable-cost", 0, "Default variable cost per event")
	f.Float64("fixed-costs", 0, "Monthly fixed costs")
	f.Float64("target-bookings", 0, "Monthly bookings target")
	f.StringSlice("unset", nil, "Clear fields: average-price, variable-cost, fixed-costs, target-bookings")

	assumptionsCmd.AddCommand(assumptionsShowCmd, assumptionsSetCmd)
	rootCmd.AddCommand(assumptionsCmd)
}

// assumptionFields maps flag names onto the sheet's optional values.
func assumptionFields(raw *model.RawAssumptions) map[string]**float64 {
	return map[string]**float64{
		"average-price":   &raw.AveragePrice,
		"variable-cost":   &raw.DefaultVariableCost,
		"fixed-costs":     &raw.MonthlyFixedCosts,
		"target-bookings": &raw.TargetBookings,
	}
}

func runAssumptionsShow(_ *cobra.Command, _ []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	raw := lr.Book.Assumptions

	fmt.Println()
	fmt.Print(cli.RenderKV("Assumptions", []cli.KV{
		{Label: "Average price", Value: cli.FormatMoneyPtr(raw.AveragePrice)},
		{Label: "Default variable cost", Value: cli.FormatMoneyPtr(raw.DefaultVariableCost)},
		{Label: "Monthly fixed costs", Value: cli.FormatMoneyPtr(raw.MonthlyFixedCosts)},
		{Label: "Target bookings", Value: optCount(raw.TargetBookings)},
	}))
	if len(raw.Extra) > 0 {
		extra := make([]cli.KV, len(raw.Extra))
		for i, kv := range raw.Extra {
			extra[i] = cli.KV{Label: kv.Key, Value: kv.Value}
		}
		fmt.Println()
		fmt.Print(cli.RenderKV("Other rows", extra))
	}
	fmt.Println()
	fmt.Println("  Unset values count as zero; n/a target disables the target booking ratio.")
	return nil
}

func optCount(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}

func runAssumptionsSet(c *cobra.Command, _ []string) error {
	unset, err := c.Flags().GetStringSlice("unset")
	if err != nil {
		return err
	}
	return modify(func(lr *pipeline.LoadResult) error {
		fields := assumptionFields(&lr.Book.Assumptions)
		for _, name := range unset {
			dst, ok := fields[name]
			if !ok {
				return fmt.Errorf("--unset: unknown field %q", name)
			}
			*dst = nil
		}
		for name, dst := range fields {
			if !c.Flags().Changed(name) {
				continue
			}
			v, err := c.Flags().GetFloat64(name)
			if err != nil {
				return err
			}
			*dst = model.Float(v)
		}
		a := lr.Book.Assumptions.Resolve()
		fmt.Printf("  Assumptions: variable cost %s, fixed costs %s\n",
			cli.FormatMoney(a.DefaultVariableCost), cli.FormatMoney(a.MonthlyFixedCosts))
		return nil
	})
}
