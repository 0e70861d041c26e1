package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Year-to-date KPIs and annual totals",
	RunE:  runSummary,
}

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Monthly revenue, costs and profit for the year",
	RunE:  runMonthly,
}

var annualCmd = &cobra.Command{
	Use:   "annual",
	Short: "Annual rollup of the monthly figures",
	RunE:  runAnnual,
}

func init() {
	rootCmd.AddCommand(summaryCmd, monthlyCmd, annualCmd)
}

// ytdThrough is the last month counted year to date: the current month for
// the current year, December for past years.
func ytdThrough(year int, now time.Time) model.Month {
	if year == now.Year() {
		return model.MonthOf(now)
	}
	return model.Month{Year: year, Month: time.December}
}

func runSummary(_ *cobra.Command, _ []string) error {
	year := reportYear()
	cs, err := loadSummaries(year)
	if err != nil {
		return err
	}

	annual := pipeline.ComputeAnnual(cs.Monthly)
	ytd := pipeline.YearToDate(cs.Monthly, ytdThrough(year, time.Now()))

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("GAME BUS  %d", year)))
	fmt.Println()

	if annual.EventCount == 0 {
		fmt.Printf("  No events recorded for %d.\n", year)
		fmt.Println("  Add one with: gbdash events add --date YYYY-MM-DD --price N")
		fmt.Println()
	}

	fmt.Print(cli.RenderKV("Year to date ("+ytd.Through.Label()+")", []cli.KV{
		{Label: "Events", Value: cli.FormatNumber(int64(ytd.EventCount))},
		{Label: "Revenue", Value: cli.FormatMoney(ytd.Revenue)},
		{Label: "Net profit", Value: cli.FormatMoney(ytd.NetProfit)},
	}))
	fmt.Println()
	fmt.Print(annualKV(annual))

	if cs.CacheHit && !flagQuiet {
		fmt.Println()
		fmt.Println(cli.RenderWarning("figures served from cache; use --no-cache to recompute"))
	}
	return nil
}

func annualKV(a model.AnnualSummary) string {
	return cli.RenderKV(fmt.Sprintf("Annual %d", a.Year), []cli.KV{
		{Label: "Events", Value: cli.FormatNumber(int64(a.EventCount))},
		{Label: "Active months", Value: fmt.Sprintf("%d of %d", a.ActiveMonths, a.Months)},
		{Label: "Revenue", Value: cli.FormatMoney(a.Revenue)},
		{Label: "Variable costs", Value: cli.FormatMoney(a.VariableCostTotal)},
		{Label: "Fixed costs", Value: cli.FormatMoney(a.FixedCosts)},
		{Label: "Pizza add-ons", Value: fmt.Sprintf("%d (%s)", a.PizzaAddons, cli.FormatMoney(a.PizzaMargin))},
		{Label: "Net profit", Value: cli.FormatMoney(a.NetProfit)},
		{Label: "ARPU", Value: cli.FormatMoneyPtr(a.ARPU)},
		{Label: "Avg monthly revenue", Value: cli.FormatMoneyPtr(a.AvgMonthlyRevenue)},
		{Label: "Avg monthly profit", Value: cli.FormatMoneyPtr(a.AvgMonthlyProfit)},
		{Label: "Avg booking ratio", Value: cli.FormatPercent(a.AvgBookingRatio)},
		{Label: "New reviews", Value: fmt.Sprintf("%.0f", a.NewReviews)},
	})
}

func runMonthly(_ *cobra.Command, _ []string) error {
	year := reportYear()
	cs, err := loadSummaries(year)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY  %d", year)))
	fmt.Println()
	fmt.Print(cli.RenderTable(monthlyTable(cs.Monthly)))
	return nil
}

func monthlyTable(monthly []model.MonthlySummary) cli.Table {
	rows := make([][]string, 0, len(monthly)+1)
	for _, m := range monthly {
		rows = append(rows, []string{
			m.Month.Label(),
			cli.FormatNumber(int64(m.EventCount)),
			cli.FormatMoney(m.Revenue),
			cli.FormatMoney(m.VariableCostTotal),
			cli.FormatMoney(m.FixedCosts),
			cli.FormatMoney(m.PizzaMargin),
			cli.FormatMoney(m.NetProfit),
			cli.FormatMoneyPtr(m.ARPU),
			cli.FormatPercent(m.BookingRatio),
			cli.FormatPercent(m.RetroAdoption),
		})
	}
	a := pipeline.ComputeAnnual(monthly)
	rows = append(rows, []string{
		"Total",
		cli.FormatNumber(int64(a.EventCount)),
		cli.FormatMoney(a.Revenue),
		cli.FormatMoney(a.VariableCostTotal),
		cli.FormatMoney(a.FixedCosts),
		cli.FormatMoney(a.PizzaMargin),
		cli.FormatMoney(a.NetProfit),
		cli.FormatMoneyPtr(a.ARPU),
		cli.FormatPercent(a.AvgBookingRatio),
		"",
	})
	return cli.Table{
		Headers:  []string{"Month", "Events", "Revenue", "Var. cost", "Fixed", "Pizza", "Net profit", "ARPU", "Booking", "Retro"},
		Rows:     rows,
		TotalRow: true,
	}
}

func runAnnual(_ *cobra.Command, _ []string) error {
	year := reportYear()
	cs, err := loadSummaries(year)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(annualKV(pipeline.ComputeAnnual(cs.Monthly)))
	return nil
}
