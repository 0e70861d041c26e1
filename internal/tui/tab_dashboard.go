package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/tui/components"
	"github.com/theirongolddev/gbdash/internal/tui/theme"
	"github.com/theirongolddev/gbdash/internal/workbook"

	tea "github.com/charmbracelet/bubbletea"
)

func (a App) updateDashboardKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "A":
		cmd := a.openAssumptionsForm()
		return a, cmd, true
	case "C":
		year, opts := a.year, a.opts
		cmd := a.mutate(fmt.Sprintf("%d consolidated into Monthly and Summary", year), func(b *workbook.Book) error {
			_, err := pipeline.Consolidate(b, year, opts)
			return err
		})
		return a, cmd, true
	}
	return a, nil, false
}

func (a App) renderDashboardTab(cw int) string {
	t := theme.Active
	ytd, annual := a.ytd, a.annual

	// previous month for the delta line of the revenue card
	var delta string
	if cur, ok := a.monthSummary(ytd.Through); ok && ytd.Through.Month > time.January {
		prev, _ := a.monthSummary(model.Month{Year: ytd.Through.Year, Month: ytd.Through.Month - 1})
		delta = fmt.Sprintf("%s %s vs %s", ytd.Through.Label(), cli.FormatDelta(cur.Revenue, prev.Revenue), prev.Month.Label())
	}

	top := components.MetricCardRow([]components.Metric{
		{Label: "Revenue YTD (" + ytd.Through.Label() + ")", Value: cli.FormatMoney(ytd.Revenue), Delta: delta},
		{Label: "Net profit YTD", Value: cli.FormatMoney(ytd.NetProfit), Color: t.Money(ytd.NetProfit)},
		{Label: "Events YTD", Value: cli.FormatNumber(int64(ytd.EventCount))},
		{Label: "ARPU " + fmt.Sprint(a.year), Value: orNA(cli.FormatMoneyPtr(annual.ARPU))},
	}, cw)
	second := components.MetricCardRow([]components.Metric{
		{Label: "Net profit " + fmt.Sprint(a.year), Value: cli.FormatMoney(annual.NetProfit), Color: t.Money(annual.NetProfit)},
		{Label: "Variable costs", Value: cli.FormatMoney(annual.VariableCostTotal)},
		{Label: "Fixed costs", Value: cli.FormatMoney(annual.FixedCosts)},
		{Label: "Avg booking ratio", Value: orNA(cli.FormatPercent(annual.AvgBookingRatio)), Delta: string(a.opts.BookingRatio)},
	}, cw)

	table := components.ContentCard("Monthly "+fmt.Sprint(a.year), a.monthlyTable(cw), cw)

	bars := make([]components.Bar, len(a.monthly))
	revenue := make([]float64, len(a.monthly))
	for i, m := range a.monthly {
		bars[i] = components.Bar{Label: m.Month.Label(), Value: m.NetProfit, Text: cli.FormatCompact(m.NetProfit)}
		revenue[i] = m.Revenue
	}
	widths := components.LayoutRow(cw, 2)
	profit := components.ContentCard("Net profit by month",
		components.HBars(bars, components.CardInnerWidth(widths[0]))+"\n\n"+
			dimText("revenue ")+components.Sparkline(revenue, t.Accent),
		widths[0])
	side := components.ContentCard("Assumptions", a.assumptionsBody(components.CardInnerWidth(widths[1])), widths[1])

	return strings.Join([]string{top, second, table, components.CardRow([]string{profit, side})}, "\n")
}

func (a App) monthSummary(m model.Month) (model.MonthlySummary, bool) {
	for _, s := range a.monthly {
		if s.Month == m {
			return s, true
		}
	}
	return model.MonthlySummary{}, false
}

func (a App) monthlyTable(cw int) string {
	wide := !a.isCompactLayout()
	cols := []struct {
		head  string
		width int
		cell  func(m model.MonthlySummary) string
		total string
		wide  bool
	}{
		{"Mes", 4, func(m model.MonthlySummary) string { return m.Month.Label() }, "Tot", false},
		{"Ev", 3, func(m model.MonthlySummary) string { return fmt.Sprint(m.EventCount) }, fmt.Sprint(a.annual.EventCount), false},
		{"Ingresos", 12, func(m model.MonthlySummary) string { return cli.FormatMoney(m.Revenue) }, cli.FormatMoney(a.annual.Revenue), false},
		{"Var.", 11, func(m model.MonthlySummary) string { return cli.FormatMoney(m.VariableCostTotal) }, cli.FormatMoney(a.annual.VariableCostTotal), false},
		{"Fijos", 11, func(m model.MonthlySummary) string { return cli.FormatMoney(m.FixedCosts) }, cli.FormatMoney(a.annual.FixedCosts), false},
		{"Pizza", 10, func(m model.MonthlySummary) string { return cli.FormatMoney(m.PizzaMargin) }, cli.FormatMoney(a.annual.PizzaMargin), true},
		{"Utilidad", 12, func(m model.MonthlySummary) string { return cli.FormatMoney(m.NetProfit) }, cli.FormatMoney(a.annual.NetProfit), false},
		{"ARPU", 10, func(m model.MonthlySummary) string { return cli.FormatMoneyPtr(m.ARPU) }, cli.FormatMoneyPtr(a.annual.ARPU), true},
		{"Reservas", 9, func(m model.MonthlySummary) string { return cli.FormatPercent(m.BookingRatio) }, cli.FormatPercent(a.annual.AvgBookingRatio), false},
	}

	line := func(cell func(i int) string) string {
		var parts []string
		for i, c := range cols {
			if c.wide && !wide {
				continue
			}
			if i == 0 {
				parts = append(parts, fmt.Sprintf("%-*s", c.width, cell(i)))
			} else {
				parts = append(parts, fmt.Sprintf("%*s", c.width, cell(i)))
			}
		}
		return strings.Join(parts, " ")
	}

	var b strings.Builder
	b.WriteString(headerRow(line(func(i int) string { return cols[i].head })))
	for _, m := range a.monthly {
		b.WriteString("\n")
		text := line(func(i int) string { return cols[i].cell(m) })
		b.WriteString(row(text, m.Month == a.ytd.Through))
	}
	b.WriteString("\n")
	b.WriteString(headerRow(line(func(i int) string { return cols[i].total })))
	return b.String()
}

func (a App) assumptionsBody(w int) string {
	raw := a.res.Book.Assumptions
	pairs := []struct{ k, v string }{
		{"Average price", optMoney(raw.AveragePrice)},
		{"Default var. cost", optMoney(raw.DefaultVariableCost)},
		{"Monthly fixed costs", optMoney(raw.MonthlyFixedCosts)},
		{"Target bookings", optNumber(raw.TargetBookings)},
		{"Fixed costs from", a.opts.FixedCostsFromMonth.String()},
		{"Counting", countingWord(a.opts.OnlyConfirmed)},
	}
	body := kvLines(pairs, w)
	if n := len(a.res.Warnings); n > 0 {
		body += "\n\n" + dimText(fmt.Sprintf("%d cells coerced to zero on load", n))
	}
	return body + "\n\n" + dimText("[A] edit  [C] consolidate")
}

func countingWord(onlyConfirmed bool) string {
	if onlyConfirmed {
		return "confirmed events"
	}
	return "all events"
}

func optMoney(v *float64) string {
	if v == nil {
		return "unset"
	}
	return cli.FormatMoney(*v)
}

func optNumber(v *float64) string {
	if v == nil {
		return "unset"
	}
	return fmt.Sprintf("%g", *v)
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
