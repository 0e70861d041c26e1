package agenda

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/theirongolddev/gbdash/internal/model"
)

func fixedOptions() ICSOptions {
	o := DefaultICSOptions()
	o.Now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return o
}

func TestToICS(t *testing.T) {
	entries := []model.AgendaEntry{
		{ID: "a1", Name: "Fiesta Ana", Address: "Calle 1", Date: date(2025, 3, 14), Time: "16:30", Cost: 2500},
		{ID: "a2", Name: "Sin hora", Date: date(2025, 3, 15)},
		{ID: "a3", Name: "Sin fecha"},
	}

	out, err := ToICS(entries, fixedOptions())
	if err != nil {
		t.Fatalf("ToICS: %v", err)
	}
	text := string(out)
	if !strings.Contains(text, "\r\n") {
		t.Error("expected CRLF line endings")
	}
	if !strings.Contains(text, "PRODID:"+productID) {
		t.Errorf("missing PRODID in:\n%s", text)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("VEVENTs = %d, want 2", len(events))
	}

	first := events[0]
	if got := first.GetProperty(ics.ComponentPropertySummary).Value; got != "Fiesta Ana" {
		t.Errorf("SUMMARY = %q", got)
	}
	if got := first.GetProperty(ics.ComponentPropertyLocation).Value; got != "Calle 1" {
		t.Errorf("LOCATION = %q", got)
	}
	if got := first.GetProperty(ics.ComponentPropertyDescription).Value; !strings.Contains(got, "500.00 MXN") {
		t.Errorf("DESCRIPTION = %q, want cost", got)
	}
	start, err := first.GetStartAt()
	if err != nil {
		t.Fatal(err)
	}
	end, err := first.GetEndAt()
	if err != nil {
		t.Fatal(err)
	}
	if !start.Equal(time.Date(2025, 3, 14, 16, 30, 0, 0, time.UTC)) {
		t.Errorf("DTSTART = %v", start)
	}
	if end.Sub(start) != 2*time.Hour {
		t.Errorf("duration = %v, want 2h", end.Sub(start))
	}

	second, err := events[1].GetStartAt()
	if err != nil {
		t.Fatal(err)
	}
	if second.Hour() != 10 || second.Minute() != 0 {
		t.Errorf("default start = %v, want 10:00", second)
	}
}

func TestToICS_CustomDuration(t *testing.T) {
	o := fixedOptions()
	o.Duration = 90 * time.Minute
	out, err := ToICS([]model.AgendaEntry{{ID: "x", Name: "Corta", Date: date(2025, 4, 1), Time: "09:00"}}, o)
	if err != nil {
		t.Fatal(err)
	}
	cal, err := ics.ParseCalendar(strings.NewReader(string(out)))
	if err != nil {
		t.Fatal(err)
	}
	ev := cal.Events()[0]
	start, _ := ev.GetStartAt()
	end, _ := ev.GetEndAt()
	if end.Sub(start) != 90*time.Minute {
		t.Errorf("duration = %v, want 90m", end.Sub(start))
	}
}

func TestEventsICS(t *testing.T) {
	events := []model.Event{
		{ID: 9, Date: date(2025, 7, 1), StartTime: "17:00", EndTime: "21:00", ClientName: "Luis",
			Price: 3200, Package: "Retro", Zone: "Mitras", Address: "Av. Uno"},
	}
	out, err := EventsICS(events, fixedOptions())
	if err != nil {
		t.Fatal(err)
	}
	cal, err := ics.ParseCalendar(strings.NewReader(string(out)))
	if err != nil {
		t.Fatal(err)
	}
	evs := cal.Events()
	if len(evs) != 1 {
		t.Fatalf("VEVENTs = %d", len(evs))
	}
	if got := evs[0].Id(); got != "event-9@gbdash" {
		t.Errorf("UID = %q", got)
	}
	start, _ := evs[0].GetStartAt()
	end, _ := evs[0].GetEndAt()
	if end.Sub(start) != 4*time.Hour {
		t.Errorf("span = %v, want 4h from end time", end.Sub(start))
	}
	desc := evs[0].GetProperty(ics.ComponentPropertyDescription).Value
	if !strings.Contains(desc, "Paquete: Retro") || !strings.Contains(desc, "Mitras") {
		t.Errorf("DESCRIPTION = %q", desc)
	}
}
