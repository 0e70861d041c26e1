package components

import (
	"strings"

	"github.com/theirongolddev/gbdash/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one entry of the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // index of the shortcut in Name, -1 when it is not part of it
}

// Tabs lists the dashboard tabs in display order.
var Tabs = []Tab{
	{Name: "Dashboard", Key: 'd', KeyPos: 0},
	{Name: "Events", Key: 'e', KeyPos: 0},
	{Name: "Agenda", Key: 'a', KeyPos: 0},
	{Name: "Marketing", Key: 'm', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1},
}

const tabPadding = 1

// TabVisualWidth returns the rendered width of tab, including padding.
// Inactive tabs whose key is not in the name carry an extra "[k]".
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2*tabPadding
	if !active && tab.KeyPos < 0 {
		w += 3
	}
	return w
}

// RenderTabBar renders the tab bar on one line of width columns, followed
// by the label shown at the right edge (the selected year).
func RenderTabBar(activeIdx, width int, right string) string {
	t := theme.Active
	bg := lipgloss.NewStyle().Background(t.Surface)
	active := lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true).Padding(0, tabPadding)
	inactive := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	key := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pad := bg.Render(strings.Repeat(" ", tabPadding))

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		switch {
		case i == activeIdx:
			parts[i] = active.Render(tab.Name)
		case tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name):
			parts[i] = pad + inactive.Render(tab.Name[:tab.KeyPos]) +
				key.Render(tab.Name[tab.KeyPos:tab.KeyPos+1]) +
				inactive.Render(tab.Name[tab.KeyPos+1:]) + pad
		default:
			parts[i] = pad + inactive.Render(tab.Name) +
				dim.Render("[") + key.Render(string(tab.Key)) + dim.Render("]") + pad
		}
	}
	left := strings.Join(parts, bg.Render(" "))

	rightStyled := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true).Render(right + " ")
	gap := width - lipgloss.Width(left) - lipgloss.Width(rightStyled)
	if gap < 1 {
		gap = 1
	}
	return left + bg.Render(strings.Repeat(" ", gap)) + rightStyled
}

// TabIdxByKey returns the index of the tab bound to key, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
