package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/eventlog"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/tui/components"
	"github.com/theirongolddev/gbdash/internal/tui/theme"
	"github.com/theirongolddev/gbdash/internal/workbook"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// eventsState is the Events tab: the year's events with a status filter
// and a free-text search.
type eventsState struct {
	list      []model.Event
	cursor    int
	status    eventlog.Status
	query     string
	searching bool
	search    textinput.Model
}

func newEventsState() eventsState {
	ti := textinput.New()
	ti.Placeholder = "client, zone, package, notes…"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40
	return eventsState{search: ti}
}

func (s *eventsState) refresh(b *workbook.Book, year int) {
	all := eventlog.List(b, eventlog.Filter{Status: s.status, Search: s.query})
	s.list = nil
	for _, e := range all {
		if e.Date.Year() == year {
			s.list = append(s.list, e)
		}
	}
	s.cursor = max(0, min(s.cursor, len(s.list)-1))
}

func (s *eventsState) move(delta int) {
	s.cursor = max(0, min(s.cursor+delta, len(s.list)-1))
}

func (s eventsState) selected() (model.Event, bool) {
	if s.cursor < 0 || s.cursor >= len(s.list) {
		return model.Event{}, false
	}
	return s.list[s.cursor], true
}

// nextStatus cycles all → pending → confirmed.
func nextStatus(st eventlog.Status) eventlog.Status {
	switch st {
	case "":
		return eventlog.StatusPending
	case eventlog.StatusPending:
		return eventlog.StatusConfirmed
	default:
		return ""
	}
}

func (a App) updateEventsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.events.move(1)
	case "k", "up":
		a.events.move(-1)
	case "g":
		a.events.cursor = 0
	case "G":
		a.events.move(len(a.events.list))
	case "/":
		a.events.searching = true
		a.events.search.SetValue(a.events.query)
		cmd := a.events.search.Focus()
		return a, cmd, true
	case "esc":
		if a.events.query == "" && a.events.status == "" {
			return a, nil, false
		}
		a.events.query, a.events.status = "", ""
		a.recompute()
	case "f":
		a.events.status = nextStatus(a.events.status)
		a.events.cursor = 0
		a.recompute()
	case "n":
		cmd := a.openEventForm(nil)
		return a, cmd, true
	case "enter":
		e, ok := a.events.selected()
		if !ok {
			return a, nil, true
		}
		cmd := a.openEventForm(&e)
		return a, cmd, true
	case "c":
		e, ok := a.events.selected()
		if !ok {
			return a, nil, true
		}
		label := fmt.Sprintf("event %d marked %s", e.ID, statusWord(!e.Confirmed))
		cmd := a.mutate(label, func(b *workbook.Book) error {
			_, err := eventlog.SetConfirmed(b, e.ID, !e.Confirmed)
			return err
		})
		return a, cmd, true
	case "D":
		e, ok := a.events.selected()
		if !ok {
			return a, nil, true
		}
		a.confirm = &pendingDelete{
			label: fmt.Sprintf("event %d (%s)", e.ID, e.Title()),
			run:   func(b *workbook.Book) error { return eventlog.Delete(b, e.ID) },
		}
	case "i":
		data, err := agenda.EventsICS(a.events.list, a.icsOpts)
		return a, a.export(fmt.Sprintf("gbdash-events-%d.ics", a.year), data, err), true
	case "v":
		data, err := eventlog.ToCSV(a.events.list, a.res.Book.Assumptions.Resolve())
		return a, a.export(fmt.Sprintf("gbdash-events-%d.csv", a.year), data, err), true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) updateEventsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.events.query = strings.TrimSpace(a.events.search.Value())
		a.events.searching = false
		a.events.search.Blur()
		a.events.cursor = 0
		a.recompute()
		return a, nil
	case "esc":
		a.events.searching = false
		a.events.search.Blur()
		return a, nil
	}
	var cmd tea.Cmd
	a.events.search, cmd = a.events.search.Update(msg)
	return a, cmd
}

func statusWord(confirmed bool) string {
	if confirmed {
		return "confirmed"
	}
	return "pending"
}

func (a App) renderEventsTab(cw, h int) string {
	listW, detailW := cw, 0
	if !a.isCompactLayout() {
		detailW = cw / 3
		listW = cw - detailW
	}

	filter := "all"
	if a.events.status != "" {
		filter = string(a.events.status)
	}
	title := fmt.Sprintf("Events %d · %d shown · %s", a.year, len(a.events.list), filter)
	if a.events.query != "" {
		title += fmt.Sprintf(" · %q", a.events.query)
	}

	var b strings.Builder
	if a.events.searching {
		b.WriteString(a.events.search.View())
		b.WriteString("\n")
	}

	inner := components.CardInnerWidth(listW)
	clientW := max(inner-58, 8)
	format := fmt.Sprintf("%%4s  %%-10s  %%-5s  %%-%ds  %%-12s  %%11s  %%9s  %%-9s", clientW)
	b.WriteString(headerRow(fmt.Sprintf(format, "ID", "Date", "Time", "Client", "Package", "Price", "Var.", "Status")))
	b.WriteString("\n")

	if len(a.events.list) == 0 {
		b.WriteString(dimText("No events. Press n to add one."))
	}
	rows := h - 5
	start, end := visibleWindow(a.events.cursor, rows, len(a.events.list))
	for i := start; i < end; i++ {
		e := a.events.list[i]
		varCost := "default"
		if e.VariableCost != nil {
			varCost = cli.FormatCompact(*e.VariableCost)
		}
		line := fmt.Sprintf(format,
			fmt.Sprintf("%d", e.ID),
			cli.FormatDate(e.Date),
			e.StartTime,
			truncStr(e.Title(), clientW),
			truncStr(e.Package, 12),
			cli.FormatMoney(e.Price),
			varCost,
			e.Status(),
		)
		b.WriteString(row(line, i == a.events.cursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	list := components.ContentCard(title, b.String(), listW)
	if detailW == 0 {
		return list
	}

	detail := dimText("Nothing selected")
	if e, ok := a.events.selected(); ok {
		detail = a.eventDetail(e, components.CardInnerWidth(detailW))
	}
	return components.CardRow([]string{list, components.FocusedCard("Detail", detail, detailW)})
}

func (a App) eventDetail(e model.Event, w int) string {
	assumptions := a.res.Book.Assumptions.Resolve()
	varCost := cli.FormatMoney(e.ResolvedVariableCost(assumptions))
	if e.VariableCost == nil {
		varCost += " (default)"
	}
	pairs := []struct{ k, v string }{
		{"Client", e.ClientName},
		{"Date", cli.FormatDate(e.Date)},
		{"Time", strings.Trim(e.StartTime+"-"+e.EndTime, "-")},
		{"Address", e.Address},
		{"Phone", e.Phone},
		{"Zone", e.Zone},
		{"Package", e.Package},
		{"Price", cli.FormatMoney(e.Price)},
		{"Var. cost", varCost},
		{"Pizza", cli.FormatFlag(e.PizzaAddon)},
		{"Pizza margin", cli.FormatMoney(e.PizzaMargin)},
		{"Retro ext.", cli.FormatFlag(e.RetroExterior)},
		{"Status", e.Status()},
		{"Notes", e.Notes},
	}
	return kvLines(pairs, w)
}

// kvLines renders label/value pairs, one per line, truncated to w.
func kvLines(pairs []struct{ k, v string }, w int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	labelW := 0
	for _, p := range pairs {
		labelW = max(labelW, lipgloss.Width(p.k))
	}
	lines := make([]string, 0, len(pairs))
	for _, p := range pairs {
		v := p.v
		if v == "" {
			v = "-"
		}
		lines = append(lines, label.Render(fmt.Sprintf("%-*s ", labelW, p.k))+value.Render(truncStr(v, w-labelW-1)))
	}
	return strings.Join(lines, "\n")
}
