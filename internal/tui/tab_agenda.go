package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/cli"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/tui/components"
	"github.com/theirongolddev/gbdash/internal/workbook"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type agendaState struct {
	list   []model.AgendaEntry
	cursor int
}

func (s *agendaState) refresh(b *workbook.Book) {
	s.list = agenda.NewManager(b).List()
	s.cursor = max(0, min(s.cursor, len(s.list)-1))
}

func (s *agendaState) move(delta int) {
	s.cursor = max(0, min(s.cursor+delta, len(s.list)-1))
}

func (s agendaState) selected() (model.AgendaEntry, bool) {
	if s.cursor < 0 || s.cursor >= len(s.list) {
		return model.AgendaEntry{}, false
	}
	return s.list[s.cursor], true
}

func (a App) updateAgendaKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.agendaTab.move(1)
	case "k", "up":
		a.agendaTab.move(-1)
	case "g":
		a.agendaTab.cursor = 0
	case "G":
		a.agendaTab.move(len(a.agendaTab.list))
	case "n":
		cmd := a.openAgendaForm(nil)
		return a, cmd, true
	case "enter":
		e, ok := a.agendaTab.selected()
		if !ok {
			return a, nil, true
		}
		cmd := a.openAgendaForm(&e)
		return a, cmd, true
	case "D":
		e, ok := a.agendaTab.selected()
		if !ok {
			return a, nil, true
		}
		a.confirm = &pendingDelete{
			label: fmt.Sprintf("agenda entry %q", e.Name),
			run:   func(b *workbook.Book) error { return agenda.NewManager(b).Delete(e.ID) },
		}
	case "i":
		data, err := agenda.ToICS(a.agendaTab.list, a.icsOpts)
		return a, a.export("gbdash-agenda.ics", data, err), true
	case "v":
		data, err := agenda.ToCSV(a.agendaTab.list)
		return a, a.export("gbdash-agenda.csv", data, err), true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderAgendaTab(cw, h int) string {
	now := a.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	var total float64
	upcoming := 0
	for _, e := range a.agendaTab.list {
		total += e.Cost
		if !e.Date.IsZero() && !e.Date.Before(today) {
			upcoming++
		}
	}

	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Entries", Value: cli.FormatNumber(int64(len(a.agendaTab.list)))},
		{Label: "Upcoming", Value: cli.FormatNumber(int64(upcoming))},
		{Label: "Total cost", Value: cli.FormatMoney(total)},
	}, cw)

	inner := components.CardInnerWidth(cw)
	nameW := max((inner-34)/2, 8)
	addrW := max(inner-34-nameW, 8)
	format := fmt.Sprintf("%%-10s  %%-5s  %%-%ds  %%-%ds  %%11s", nameW, addrW)

	var b strings.Builder
	b.WriteString(headerRow(fmt.Sprintf(format, "Date", "Time", "Name", "Address", "Cost")))
	b.WriteString("\n")
	if len(a.agendaTab.list) == 0 {
		b.WriteString(dimText("The agenda is empty. Press n to add an entry."))
	}
	rows := h - lipgloss.Height(metrics) - 4
	start, end := visibleWindow(a.agendaTab.cursor, rows, len(a.agendaTab.list))
	for i := start; i < end; i++ {
		e := a.agendaTab.list[i]
		line := fmt.Sprintf(format,
			cli.FormatDate(e.Date),
			e.Time,
			truncStr(e.Name, nameW),
			truncStr(e.Address, addrW),
			cli.FormatMoney(e.Cost),
		)
		b.WriteString(row(line, i == a.agendaTab.cursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	title := fmt.Sprintf("Agenda · ics default %s, %s", a.icsOpts.DefaultStart, a.icsOpts.Duration)
	return metrics + "\n" + components.ContentCard(title, b.String(), cw)
}
