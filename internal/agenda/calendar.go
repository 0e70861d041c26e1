package agenda

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/gbdash/internal/model"
)

// Feed colors by package and status.
const (
	ColorPending      = "#3b82f6"
	ColorRetroClassic = "#7c3aed"
	ColorRetro        = "#ef4444"
	ColorClassic      = "#10b981"
	ColorOther        = "#6b7280"
)

// FeedEvent is one event in FullCalendar's JSON event format.
type FeedEvent struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Start         string    `json:"start"`
	End           string    `json:"end"`
	Color         string    `json:"color"`
	ExtendedProps FeedProps `json:"extendedProps"`
}

// FeedProps carries the event details shown on click.
type FeedProps struct {
	Package string `json:"paquete"`
	Address string `json:"direccion"`
	Phone   string `json:"telefono"`
	Notes   string `json:"notas"`
	Status  string `json:"estatus"`
}

// CalendarFeed converts the event log into FullCalendar events. Events
// without a date are skipped.
func CalendarFeed(events []model.Event, opts ICSOptions) []FeedEvent {
	opts = opts.normalized()
	out := make([]FeedEvent, 0, len(events))
	for _, e := range events {
		if e.Date.IsZero() {
			continue
		}
		start, end := eventSpan(e, opts)
		out = append(out, FeedEvent{
			ID:    fmt.Sprintf("event-%d", e.ID),
			Title: e.Title() + " (" + e.Status() + ")",
			Start: start.Format("2006-01-02T15:04:05"),
			End:   end.Format("2006-01-02T15:04:05"),
			Color: ColorFor(e.Package, e.Confirmed),
			ExtendedProps: FeedProps{
				Package: e.Package,
				Address: e.Address,
				Phone:   e.Phone,
				Notes:   e.Notes,
				Status:  e.Status(),
			},
		})
	}
	return out
}

// ColorFor picks the calendar color of an event. Pending events are always blue.
func ColorFor(pkg string, confirmed bool) string {
	if !confirmed {
		return ColorPending
	}
	p := strings.ToLower(strings.TrimSpace(pkg))
	retro := strings.Contains(p, "retro")
	classic := strings.Contains(p, "clásico") || strings.Contains(p, "clasico")
	switch {
	case retro && classic:
		return ColorRetroClassic
	case retro:
		return ColorRetro
	case classic:
		return ColorClassic
	default:
		return ColorOther
	}
}
