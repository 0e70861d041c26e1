package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	sectionAds = iota
	sectionFunnel
)

type marketingState struct {
	section int
	cursor  int
}

func (s *marketingState) move(delta, ads, funnel int) {
	n := ads
	if s.section == sectionFunnel {
		n = funnel
	}
	s.cursor = max(0, min(s.cursor+delta, n-1))
}

func (s *marketingState) clamp(ads, funnel int) {
	s.move(0, ads, funnel)
}

func (a App) updateMarketingKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.marketing.move(1, len(a.ads), len(a.funnel))
	case "k", "up":
		a.marketing.move(-1, len(a.ads), len(a.funnel))
	case "s":
		a.marketing.section = 1 - a.marketing.section
		a.marketing.cursor = 0
	case "n":
		var cmd tea.Cmd
		if a.marketing.section == sectionAds {
			cmd = a.openAdsForm(nil)
		} else {
			cmd = a.openFunnelForm(nil)
		}
		return a, cmd, true
	case "enter":
		var cmd tea.Cmd
		switch {
		case a.marketing.section == sectionAds && a.marketing.cursor < len(a.ads):
			r := a.ads[a.marketing.cursor]
			cmd = a.openAdsForm(&r)
		case a.marketing.section == sectionFunnel && a.marketing.cursor < len(a.funnel):
			r := a.funnel[a.marketing.cursor]
			cmd = a.openFunnelForm(&r)
		}
		return a, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderMarketingTab(cw int) string {
	totalAds := adsTotal(a.ads)
	yearAds := pipeline.AdsMetrics(totalAds)
	yearFunnel := pipeline.FunnelMetrics(funnelTotal(a.funnel))

	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Ad spend", Value: cli.FormatMoney(totalAds.Spend)},
		{Label: "Cost per message", Value: orNA(cli.FormatMoneyPtr(yearAds.CostPerMessage))},
		{Label: "CTR", Value: orNA(cli.FormatPercent(yearAds.CTR))},
		{Label: "Close rate", Value: orNA(cli.FormatPercent(yearFunnel.CloseRate))},
	}, cw)

	adsTitle := fmt.Sprintf("Ads %d", a.year)
	funnelTitle := fmt.Sprintf("Funnel %d", a.year)
	adsCard, funnelCard := components.ContentCard, components.ContentCard
	if a.marketing.section == sectionAds {
		adsCard = components.FocusedCard
	} else {
		funnelCard = components.FocusedCard
	}

	var out []string
	out = append(out, metrics)
	if a.isCompactLayout() {
		out = append(out,
			adsCard(adsTitle, a.adsTable(), cw),
			funnelCard(funnelTitle, a.funnelTable(), cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		out = append(out, components.CardRow([]string{
			adsCard(adsTitle, a.adsTable(), widths[0]),
			funnelCard(funnelTitle, a.funnelTable(), widths[1]),
		}))
	}

	bars := make([]string, 0, len(a.funnel))
	labelW := 4
	barW := max(components.CardInnerWidth(cw)-labelW-6, 10)
	for _, r := range a.funnel {
		bars = append(bars, components.ProgressBar(r.Month.Label(), r.CloseRate, labelW, barW))
	}
	if len(bars) > 0 {
		out = append(out, components.ContentCard("Close rate by month", strings.Join(bars, "\n"), cw))
	}
	return strings.Join(out, "\n")
}

// adsTotal sums a year of ads records so the year's ratios come from
// totals rather than an average of monthly ratios.
func adsTotal(rows []pipeline.AdsRow) model.AdsRecord {
	var t model.AdsRecord
	for _, r := range rows {
		t.Spend += r.Spend
		t.Messages += r.Messages
		t.Clicks += r.Clicks
		t.Impressions += r.Impressions
	}
	return t
}

func funnelTotal(rows []pipeline.FunnelRow) model.FunnelRecord {
	var t model.FunnelRecord
	for _, r := range rows {
		t.Messages += r.Messages
		t.AppointmentsOffered += r.AppointmentsOffered
		t.BookingsConfirmed += r.BookingsConfirmed
	}
	return t
}

func (a App) adsTable() string {
	format := "%-4s %11s %9s %7s %7s %9s %7s"
	var b strings.Builder
	b.WriteString(headerRow(fmt.Sprintf(format, "Mes", "Gasto", "Impr.", "Clics", "Msjs", "$/msj", "CTR")))
	if len(a.ads) == 0 {
		b.WriteString("\n" + dimText("No ads data. Press n to add a month."))
	}
	for i, r := range a.ads {
		b.WriteString("\n")
		b.WriteString(row(fmt.Sprintf(format,
			r.Month.Label(),
			cli.FormatMoney(r.Spend),
			cli.FormatCompact(r.Impressions),
			cli.FormatCompact(r.Clicks),
			cli.FormatCompact(r.Messages),
			cli.FormatMoneyPtr(r.CostPerMessage),
			cli.FormatPercent(r.CTR),
		), a.marketing.section == sectionAds && i == a.marketing.cursor))
	}
	return b.String()
}

func (a App) funnelTable() string {
	format := "%-4s %9s %9s %9s %8s"
	var b strings.Builder
	b.WriteString(headerRow(fmt.Sprintf(format, "Mes", "Msjs", "Citas", "Reservas", "Cierre")))
	if len(a.funnel) == 0 {
		b.WriteString("\n" + dimText("No funnel data. Press s, then n."))
	}
	for i, r := range a.funnel {
		b.WriteString("\n")
		b.WriteString(row(fmt.Sprintf(format,
			r.Month.Label(),
			cli.FormatCompact(r.Messages),
			cli.FormatCompact(r.AppointmentsOffered),
			cli.FormatCompact(r.BookingsConfirmed),
			cli.FormatPercent(r.CloseRate),
		), a.marketing.section == sectionFunnel && i == a.marketing.cursor))
	}
	return b.String()
}
