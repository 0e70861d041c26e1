package agenda

import (
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestManagerCRUD(t *testing.T) {
	b := workbook.New(workbook.LocaleES)
	m := NewManager(b)

	first := m.Add(model.AgendaEntry{Name: "Revisión", Date: date(2025, 5, 2), Time: "12:00", Cost: 300})
	second := m.Add(model.AgendaEntry{Name: "Cotización", Date: date(2025, 5, 1), Cost: 0})
	if first.ID == "" || second.ID == "" || first.ID == second.ID {
		t.Fatalf("IDs not assigned: %q %q", first.ID, second.ID)
	}
	dup := m.Add(model.AgendaEntry{ID: first.ID, Name: "Copia"})
	if dup.ID == first.ID {
		t.Error("duplicate ID should be replaced")
	}

	list := m.List()
	if len(list) != 3 || list[0].ID != dup.ID || list[1].ID != second.ID {
		t.Errorf("List order = %v", list)
	}

	name := "Revisión técnica"
	cost := 350.0
	got, err := m.Update(first.ID, Patch{Name: &name, Cost: &cost})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != name || got.Cost != 350 || got.Time != "12:00" {
		t.Errorf("Update = %+v", got)
	}
	if _, err := m.Update("missing", Patch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) err = %v", err)
	}

	if err := m.Delete(second.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get(second.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v", err)
	}
	if len(b.Agenda) != 2 {
		t.Errorf("book agenda = %d entries, want 2", len(b.Agenda))
	}
}

func TestManagerImport(t *testing.T) {
	b := workbook.New(workbook.LocaleES)
	m := NewManager(b)
	existing := m.Add(model.AgendaEntry{ID: "keep", Name: "Old"})

	added, replaced := m.Import([]model.AgendaEntry{
		{ID: existing.ID, Name: "New"},
		{ID: "fresh", Name: "Fresh"},
	})
	if added != 1 || replaced != 1 {
		t.Errorf("Import = %d added, %d replaced", added, replaced)
	}
	if e, _ := m.Get("keep"); e.Name != "New" {
		t.Errorf("replaced entry = %+v", e)
	}
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		pkg       string
		confirmed bool
		want      string
	}{
		{"Retro", false, ColorPending},
		{"Clásico + Retro", true, ColorRetroClassic},
		{"Retro", true, ColorRetro},
		{"clasico", true, ColorClassic},
		{"Otro", true, ColorOther},
	}
	for _, tt := range tests {
		if got := ColorFor(tt.pkg, tt.confirmed); got != tt.want {
			t.Errorf("ColorFor(%q, %v) = %s, want %s", tt.pkg, tt.confirmed, got, tt.want)
		}
	}
}

func TestCalendarFeed(t *testing.T) {
	events := []model.Event{
		{ID: 1, Date: date(2025, 6, 7), StartTime: "16:00", EndTime: "15:00", ClientName: "Ana", Package: "Retro", Confirmed: true},
		{ID: 2, Date: date(2025, 6, 8), EndTime: "13:30", Zone: "Centro"},
		{ID: 3},
	}
	feed := CalendarFeed(events, DefaultICSOptions())
	if len(feed) != 2 {
		t.Fatalf("feed = %d events, want 2", len(feed))
	}
	if feed[0].Start != "2025-06-07T16:00:00" || feed[0].End != "2025-06-07T18:00:00" {
		t.Errorf("end before start should fall back to +2h: %+v", feed[0])
	}
	if feed[0].Title != "Ana (Efectuado)" || feed[0].Color != ColorRetro {
		t.Errorf("feed[0] = %+v", feed[0])
	}
	if feed[1].Start != "2025-06-08T10:00:00" || feed[1].End != "2025-06-08T13:30:00" {
		t.Errorf("feed[1] span = %s..%s", feed[1].Start, feed[1].End)
	}
	if feed[1].Title != "Centro (Pendiente)" {
		t.Errorf("feed[1] title = %q", feed[1].Title)
	}
}
