package components

import (
	"fmt"

	"github.com/theirongolddev/gbdash/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForRatio grades a ratio where higher is better, such as the
// booking ratio or close rate.
func ColorForRatio(r float64) lipgloss.Color {
	t := theme.Active
	switch {
	case r >= 0.75:
		return t.Green
	case r >= 0.5:
		return t.Yellow
	case r >= 0.25:
		return t.Orange
	default:
		return t.Red
	}
}

// ProgressBar renders a labeled bar for ratio r. A nil ratio renders an
// empty bar with "n/a".
func ProgressBar(label string, r *float64, labelW, barW int) string {
	t := theme.Active
	pct, text := 0.0, "n/a"
	if r != nil {
		pct = max(0, min(*r, 1))
		text = fmt.Sprintf("%3.0f%%", *r*100)
	}
	color := ColorForRatio(pct)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.Highlight)

	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")
	return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(fmt.Sprintf("%-*s", labelW, label)) +
		space + bar.ViewAs(pct) + space +
		lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true).Render(text)
}
