package cmd

import (
	"fmt"

	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"

	"github.com/spf13/cobra"
)

var adsCmd = &cobra.Command{
	Use:   "ads",
	Short: "Paid ads spend, cost per message and CTR",
	RunE:  runAdsList,
}

var adsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the ads records of the reporting year",
	RunE:  runAdsList,
}

var adsSetCmd = &cobra.Command{
	Use:   "set MONTH",
	Short: "Create or change the ads record of a month",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdsSet,
}

var funnelCmd = &cobra.Command{
	Use:   "funnel",
	Short: "Sales funnel and close rate",
	RunE:  runFunnelList,
}

var funnelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the funnel records of the reporting year",
	RunE:  runFunnelList,
}

var funnelSetCmd = &cobra.Command{
	Use:   "set MONTH",
	Short: "Create or change the funnel record of a month",
	Args:  cobra.ExactArgs(1),
	RunE:  runFunnelSet,
}

func init() {
	f := adsSetCmd.Flags()
	f.Float64("spend", 0, "Amount spent")
	f.Float64("impressions", 0, "Impressions")
	f.Float64("clicks", 0, "Clicks")
	f.Float64("messages", 0, "Messages received from ads")

	f = funnelSetCmd.Flags()
	f.Float64("messages", 0, "Messages received")
	f.Float64("offered", 0, "Appointments offered")
	f.Float64("confirmed", 0, "Bookings confirmed")

	adsCmd.AddCommand(adsListCmd, adsSetCmd)
	funnelCmd.AddCommand(funnelListCmd, funnelSetCmd)
	rootCmd.AddCommand(adsCmd, funnelCmd)
}

func parseMonthArg(arg string) (model.Month, error) {
	m, ok := model.ParseMonth(arg, reportYear())
	if !ok {
		return model.Month{}, fmt.Errorf("invalid month %q (want \"2025-03\" or a month name)", arg)
	}
	return m, nil
}

// setFloats copies the changed float flags of c into their destinations.
func setFloats(c *cobra.Command, fields map[string]*float64) error {
	for name, dst := range fields {
		if !c.Flags().Changed(name) {
			continue
		}
		v, err := c.Flags().GetFloat64(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

func runAdsList(_ *cobra.Command, _ []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	year := reportYear()
	rows := pipeline.AdsRows(lr.Book.Ads, year)
	if len(rows) == 0 {
		fmt.Printf("\n  No ads records for %d.\n", year)
		return nil
	}

	var total model.AdsRecord
	out := make([][]string, 0, len(rows)+1)
	for _, r := range rows {
		total.Spend += r.Spend
		total.Impressions += r.Impressions
		total.Clicks += r.Clicks
		total.Messages += r.Messages
		out = append(out, adsRow(r.Month.Label(), r.AdsRecord, r.AdsDerived))
	}
	out = append(out, adsRow("Total", total, pipeline.AdsMetrics(total)))

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Ads %d", year),
		Headers:  []string{"Month", "Spend", "Impressions", "Clicks", "Messages", "Cost/msg", "CTR"},
		Rows:     out,
		TotalRow: true,
	}))
	return nil
}

func adsRow(label string, r model.AdsRecord, d model.AdsDerived) []string {
	return []string{
		label,
		cli.FormatMoney(r.Spend),
		cli.FormatNumber(int64(r.Impressions)),
		cli.FormatNumber(int64(r.Clicks)),
		cli.FormatNumber(int64(r.Messages)),
		cli.FormatMoneyPtr(d.CostPerMessage),
		cli.FormatPercent(d.CTR),
	}
}

func runAdsSet(c *cobra.Command, args []string) error {
	month, err := parseMonthArg(args[0])
	if err != nil {
		return err
	}
	return modify(func(lr *pipeline.LoadResult) error {
		r := model.AdsRecord{Month: month}
		for _, existing := range lr.Book.Ads {
			if existing.Month == month {
				r = existing
			}
		}
		if err := setFloats(c, map[string]*float64{
			"spend": &r.Spend, "impressions": &r.Impressions, "clicks": &r.Clicks, "messages": &r.Messages,
		}); err != nil {
			return err
		}
		lr.Book.Ads = pipeline.UpsertAds(lr.Book.Ads, r)
		d := pipeline.AdsMetrics(r)
		fmt.Printf("  Ads %s: cost/message %s, CTR %s\n", month.Label(),
			orNA(cli.FormatMoneyPtr(d.CostPerMessage)), orNA(cli.FormatPercent(d.CTR)))
		return nil
	})
}

func runFunnelList(_ *cobra.Command, _ []string) error {
	lr, err := loadData()
	if err != nil {
		return err
	}
	year := reportYear()
	rows := pipeline.FunnelRows(lr.Book.Funnel, year)
	if len(rows) == 0 {
		fmt.Printf("\n  No funnel records for %d.\n", year)
		return nil
	}

	var total model.FunnelRecord
	out := make([][]string, 0, len(rows)+1)
	for _, r := range rows {
		total.Messages += r.Messages
		total.AppointmentsOffered += r.AppointmentsOffered
		total.BookingsConfirmed += r.BookingsConfirmed
		out = append(out, funnelRow(r.Month.Label(), r.FunnelRecord, r.FunnelDerived))
	}
	out = append(out, funnelRow("Total", total, pipeline.FunnelMetrics(total)))

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Funnel %d", year),
		Headers:  []string{"Month", "Messages", "Offered", "Confirmed", "Close rate"},
		Rows:     out,
		TotalRow: true,
	}))
	return nil
}

func funnelRow(label string, r model.FunnelRecord, d model.FunnelDerived) []string {
	return []string{
		label,
		cli.FormatNumber(int64(r.Messages)),
		cli.FormatNumber(int64(r.AppointmentsOffered)),
		cli.FormatNumber(int64(r.BookingsConfirmed)),
		cli.FormatPercent(d.CloseRate),
	}
}

func runFunnelSet(c *cobra.Command, args []string) error {
	month, err := parseMonthArg(args[0])
	if err != nil {
		return err
	}
	return modify(func(lr *pipeline.LoadResult) error {
		r := model.FunnelRecord{Month: month}
		for _, existing := range lr.Book.Funnel {
			if existing.Month == month {
				r = existing
			}
		}
		if err := setFloats(c, map[string]*float64{
			"messages": &r.Messages, "offered": &r.AppointmentsOffered, "confirmed": &r.BookingsConfirmed,
		}); err != nil {
			return err
		}
		lr.Book.Funnel = pipeline.UpsertFunnel(lr.Book.Funnel, r)
		fmt.Printf("  Funnel %s: close rate %s\n", month.Label(), orNA(cli.FormatPercent(pipeline.FunnelMetrics(r).CloseRate)))
		return nil
	})
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
