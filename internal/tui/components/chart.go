package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/gbdash/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values as one line of block characters. Negative
// values are drawn as the lowest block.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	peak := 0.0
	for _, v := range values {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		b.WriteRune(sparkBlocks[idx])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(b.String())
}

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	Text  string // value as displayed; defaults to %.0f
}

// HBars renders one bar per row, scaled to the largest magnitude. Negative
// values are drawn in red. width is the total line width.
func HBars(bars []Bar, width int) string {
	if len(bars) == 0 {
		return ""
	}
	t := theme.Active

	labelW, textW := 0, 0
	peak := 0.0
	texts := make([]string, len(bars))
	for i, b := range bars {
		texts[i] = b.Text
		if texts[i] == "" {
			texts[i] = fmt.Sprintf("%.0f", b.Value)
		}
		labelW = max(labelW, lipgloss.Width(b.Label))
		textW = max(textW, lipgloss.Width(texts[i]))
		peak = math.Max(peak, math.Abs(b.Value))
	}
	if peak == 0 {
		peak = 1
	}
	barW := width - labelW - textW - 2
	if barW < 4 {
		barW = 4
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.Highlight).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	lines := make([]string, len(bars))
	for i, b := range bars {
		n := int(math.Round(math.Abs(b.Value) / peak * float64(barW)))
		if b.Value != 0 && n == 0 {
			n = 1
		}
		color := t.Accent
		if b.Value < 0 {
			color = t.Red
		}
		fill := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", n))
		lines[i] = labelStyle.Render(fmt.Sprintf("%-*s", labelW, b.Label)) + space +
			fill + emptyStyle.Render(strings.Repeat("·", barW-n)) + space +
			textStyle.Render(fmt.Sprintf("%*s", textW, texts[i]))
	}
	return strings.Join(lines, "\n")
}
