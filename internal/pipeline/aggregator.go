// Package pipeline orchestrates workbook loading, summary caching, and
// metric aggregation.
package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// MonthInputs carries the side tables some monthly figures read from.
type MonthInputs struct {
	Funnel     *model.FunnelRecord
	NewReviews float64
}

// ComputeMonthly derives the summary for one month from the event log.
// Events without a variable cost are charged the assumptions default.
func ComputeMonthly(events []model.Event, a model.Assumptions, month model.Month, opts Options) model.MonthlySummary {
	return computeMonthly(events, a, month, opts, MonthInputs{})
}

func computeMonthly(events []model.Event, a model.Assumptions, month model.Month, opts Options, in MonthInputs) model.MonthlySummary {
	s := model.MonthlySummary{Month: month, NewReviews: in.NewReviews}

	revenue := decimal.Zero
	varCost := decimal.Zero
	pizza := decimal.Zero
	retro := 0

	for _, e := range events {
		if !month.Contains(e.Date) {
			continue
		}
		if opts.OnlyConfirmed && !e.Confirmed {
			continue
		}
		s.EventCount++
		if e.Confirmed {
			s.ConfirmedCount++
		}
		if e.PizzaAddon {
			s.PizzaAddons++
		}
		if e.RetroExterior {
			retro++
		}
		revenue = revenue.Add(decimal.NewFromFloat(e.Price))
		varCost = varCost.Add(decimal.NewFromFloat(e.ResolvedVariableCost(a)))
		pizza = pizza.Add(decimal.NewFromFloat(e.PizzaMargin))
	}

	fixed := decimal.Zero
	if month.Month >= opts.fixedFrom() {
		fixed = decimal.NewFromFloat(a.MonthlyFixedCosts)
	}

	revenue, varCost, fixed, pizza = revenue.Round(2), varCost.Round(2), fixed.Round(2), pizza.Round(2)
	s.Revenue = money(revenue)
	s.VariableCostTotal = money(varCost)
	s.FixedCosts = money(fixed)
	s.PizzaMargin = money(pizza)
	s.NetProfit = money(revenue.Sub(varCost).Sub(fixed).Add(pizza))

	n := float64(s.EventCount)
	s.ARPU = moneyRatio(s.Revenue, n)
	s.AveragePrice = s.ARPU
	s.RetroAdoption = ratio(float64(retro), n)

	switch opts.bookingRatio() {
	case BookingRatioFunnel:
		if in.Funnel != nil {
			s.BookingRatio = ratio(in.Funnel.BookingsConfirmed, n)
		}
	case BookingRatioTarget:
		if a.TargetBookings != nil {
			s.BookingRatio = ratio(n, *a.TargetBookings)
		}
	default:
		s.BookingRatio = ratio(float64(s.ConfirmedCount), n)
	}

	return s
}

// ComputeYear returns the twelve monthly summaries of year, reading the
// funnel and the hand-entered review counts from the book.
func ComputeYear(b *workbook.Book, year int, opts Options) []model.MonthlySummary {
	a := b.Assumptions.Resolve()

	funnel := make(map[model.Month]model.FunnelRecord, len(b.Funnel))
	for _, f := range b.Funnel {
		funnel[f.Month] = f
	}
	reviews := make(map[model.Month]float64)
	for _, n := range b.Notes() {
		reviews[n.Month] = n.NewReviews
	}

	months := model.MonthsOf(year)
	out := make([]model.MonthlySummary, 0, len(months))
	for _, m := range months {
		in := MonthInputs{NewReviews: reviews[m]}
		if f, ok := funnel[m]; ok {
			in.Funnel = &f
		}
		out = append(out, computeMonthly(b.Events, a, m, opts, in))
	}
	return out
}

// ComputeAnnual rolls monthly summaries up into one year. Counts and money
// are summed; per-event and per-month figures are averaged.
func ComputeAnnual(monthly []model.MonthlySummary) model.AnnualSummary {
	var s model.AnnualSummary
	if len(monthly) == 0 {
		return s
	}
	s.Year = monthly[0].Month.Year
	s.Months = len(monthly)

	revenue, varCost, fixed, pizza, net := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	var ratioSum float64
	ratioCount := 0
	for _, m := range monthly {
		s.EventCount += m.EventCount
		s.PizzaAddons += m.PizzaAddons
		s.NewReviews += m.NewReviews
		if m.EventCount > 0 {
			s.ActiveMonths++
		}
		revenue = revenue.Add(decimal.NewFromFloat(m.Revenue))
		varCost = varCost.Add(decimal.NewFromFloat(m.VariableCostTotal))
		fixed = fixed.Add(decimal.NewFromFloat(m.FixedCosts))
		pizza = pizza.Add(decimal.NewFromFloat(m.PizzaMargin))
		net = net.Add(decimal.NewFromFloat(m.NetProfit))
		if m.BookingRatio != nil {
			ratioSum += *m.BookingRatio
			ratioCount++
		}
	}

	s.Revenue = money(revenue)
	s.VariableCostTotal = money(varCost)
	s.FixedCosts = money(fixed)
	s.PizzaMargin = money(pizza)
	s.NetProfit = money(net)
	s.ARPU = moneyRatio(s.Revenue, float64(s.EventCount))
	s.AvgMonthlyRevenue = moneyRatio(s.Revenue, float64(s.Months))
	s.AvgMonthlyProfit = moneyRatio(s.NetProfit, float64(s.Months))
	s.AvgBookingRatio = ratio(ratioSum, float64(ratioCount))
	return s
}

// YearToDate sums events, revenue and net profit for every month up to and
// including through.
func YearToDate(monthly []model.MonthlySummary, through model.Month) model.KPIs {
	k := model.KPIs{Through: through}
	revenue, net := decimal.Zero, decimal.Zero
	for _, m := range monthly {
		if through.Before(m.Month) {
			continue
		}
		k.EventCount += m.EventCount
		revenue = revenue.Add(decimal.NewFromFloat(m.Revenue))
		net = net.Add(decimal.NewFromFloat(m.NetProfit))
	}
	k.Revenue = money(revenue)
	k.NetProfit = money(net)
	return k
}

// Years returns the distinct years present in the event log, newest first.
func Years(events []model.Event) []int {
	seen := make(map[int]struct{})
	for _, e := range events {
		if !e.Date.IsZero() {
			seen[e.Date.Year()] = struct{}{}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// ratio returns num/den rounded to four places, or nil when den is zero.
func ratio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	f, _ := decimal.NewFromFloat(num).DivRound(decimal.NewFromFloat(den), 4).Float64()
	return &f
}

// moneyRatio is ratio rounded to cents.
func moneyRatio(num, den float64) *float64 {
	if den == 0 {
		return nil
	}
	f, _ := decimal.NewFromFloat(num).DivRound(decimal.NewFromFloat(den), 2).Float64()
	return &f
}
