package components

import (
	"strings"

	"github.com/theirongolddev/gbdash/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status describes the bottom bar.
type Status struct {
	Hints   string // key hints for the active tab
	Message string // last action result
	IsError bool
	Saving  bool
	Source  string // workbook file name
}

// RenderStatusBar renders the bottom status bar across width columns.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active
	bg := lipgloss.NewStyle().Background(t.Surface)
	hints := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	src := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	left := hints.Render(" " + s.Hints)
	var right string
	switch {
	case s.Saving:
		right = lipgloss.NewStyle().Foreground(t.Yellow).Background(t.Surface).Render("saving… ")
	case s.Message != "":
		color := t.Green
		if s.IsError {
			color = t.Red
		}
		right = lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(s.Message + " ")
	}
	if s.Source != "" {
		right += src.Render(s.Source + " ")
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(left + bg.Render(strings.Repeat(" ", gap)) + right)
}
