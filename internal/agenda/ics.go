package agenda

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/gbdash/internal/model"
)

const productID = "-//GAME BUS MTY//Agenda//ES"

// ICSOptions controls calendar export.
type ICSOptions struct {
	// DefaultStart is used for entries without a time ("10:00").
	DefaultStart string
	// Duration is the length of every exported entry.
	Duration time.Duration
	// Location is the zone entry dates and times are written in.
	Location *time.Location
	// Now stamps DTSTAMP; time.Now when nil.
	Now func() time.Time
}

// DefaultICSOptions starts unscheduled entries at 10:00 and lasts two hours.
func DefaultICSOptions() ICSOptions {
	return ICSOptions{DefaultStart: "10:00", Duration: 2 * time.Hour, Location: time.UTC}
}

func (o ICSOptions) normalized() ICSOptions {
	if o.DefaultStart == "" {
		o.DefaultStart = "10:00"
	}
	if o.Duration <= 0 {
		o.Duration = 2 * time.Hour
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// combine joins a calendar date with an "HH:MM" clock in loc.
func combine(date time.Time, clock, fallback string, loc *time.Location) time.Time {
	hm := clock
	if hm == "" {
		hm = fallback
	}
	t, err := time.Parse("15:04", hm)
	if err != nil {
		t, _ = time.Parse("15:04", fallback)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}

// ToICS renders entries as an iCalendar document with one VEVENT each.
// Entries without a date are skipped.
func ToICS(entries []model.AgendaEntry, opts ICSOptions) ([]byte, error) {
	opts = opts.normalized()
	cal := newCalendar()
	stamp := opts.Now()

	for _, e := range entries {
		if e.Date.IsZero() {
			continue
		}
		start := combine(e.Date, e.Time, opts.DefaultStart, opts.Location)
		ev := cal.AddEvent(e.ID + "@gbdash-agenda")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(opts.Duration))
		ev.SetSummary(e.Name)
		if e.Address != "" {
			ev.SetLocation(e.Address)
		}
		ev.SetDescription("Costo: " + formatMoney(e.Cost))
	}
	return []byte(cal.Serialize()), nil
}

// EventsICS renders the event log as an iCalendar document. An event ends
// at its end time when that is after the start, otherwise after
// opts.Duration.
func EventsICS(events []model.Event, opts ICSOptions) ([]byte, error) {
	opts = opts.normalized()
	cal := newCalendar()
	stamp := opts.Now()

	for _, e := range events {
		if e.Date.IsZero() {
			continue
		}
		start, end := eventSpan(e, opts)
		ev := cal.AddEvent(fmt.Sprintf("event-%d@gbdash", e.ID))
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(fmt.Sprintf("Evento: %s - %s", e.Title(), formatMoney(e.Price)))
		if e.Address != "" {
			ev.SetLocation(e.Address)
		}
		if d := eventDescription(e); d != "" {
			ev.SetDescription(d)
		}
	}
	return []byte(cal.Serialize()), nil
}

func eventSpan(e model.Event, opts ICSOptions) (time.Time, time.Time) {
	start := combine(e.Date, e.StartTime, opts.DefaultStart, opts.Location)
	end := start.Add(opts.Duration)
	if e.EndTime != "" {
		if t := combine(e.Date, e.EndTime, e.StartTime, opts.Location); t.After(start) {
			end = t
		}
	}
	return start, end
}

func eventDescription(e model.Event) string {
	var parts []string
	for _, kv := range [][2]string{
		{"Colonia/Zona", e.Zone},
		{"Paquete", e.Package},
		{"Estatus", e.Status()},
		{"Notas", e.Notes},
		{"Teléfono", e.Phone},
	} {
		if strings.TrimSpace(kv[1]) != "" {
			parts = append(parts, kv[0]+": "+kv[1])
		}
	}
	return strings.Join(parts, " | ")
}

func newCalendar() *ics.Calendar {
	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ics.MethodPublish)
	return cal
}

func formatMoney(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v) + " MXN"
}
