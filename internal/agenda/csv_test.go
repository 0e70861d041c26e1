package agenda

import (
	"bytes"
	"strings"
	"testing"

	"github.com/theirongolddev/gbdash/internal/model"
)

func TestCSVRoundTrip(t *testing.T) {
	entries := []model.AgendaEntry{
		{ID: "a1", Name: "Fiesta, Ana", Address: "Calle \"Uno\" 123", Date: date(2025, 3, 14), Time: "16:30", Cost: 2500.5},
		{ID: "a2", Name: "Sin hora", Date: date(2025, 3, 15), Cost: 0},
		{ID: "a3", Name: "Sin fecha", Address: "Línea\nnueva", Cost: 0.1},
	}

	out, err := ToCSV(entries)
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	if !strings.HasPrefix(string(out), "id,name,address,date,time,cost\n") {
		t.Errorf("header row missing: %q", out)
	}

	back, err := FromCSV(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("FromCSV: %v", err)
	}
	if len(back) != len(entries) {
		t.Fatalf("round trip = %d entries, want %d", len(back), len(entries))
	}
	for i := range entries {
		if back[i] != entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, back[i], entries[i])
		}
	}
}

func TestFromCSV_ReorderedColumnsAndMissingID(t *testing.T) {
	in := "cost,name,date,time\n150,Visita,2025-02-03,9:00\n"
	got, err := FromCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d entries", len(got))
	}
	e := got[0]
	if e.ID == "" || e.Name != "Visita" || e.Cost != 150 || e.Time != "09:00" || e.Date != date(2025, 2, 3) {
		t.Errorf("entry = %+v", e)
	}
}

func TestFromCSV_Errors(t *testing.T) {
	if _, err := FromCSV(strings.NewReader("id,address\n1,x\n")); err == nil {
		t.Error("expected error without name column")
	}
	if _, err := FromCSV(strings.NewReader("name,cost\nA,lots\n")); err == nil {
		t.Error("expected error for bad cost")
	}
	if got, err := FromCSV(strings.NewReader("")); err != nil || got != nil {
		t.Errorf("empty input = %v, %v", got, err)
	}
}

func TestFromCSV_ByteOrderMark(t *testing.T) {
	in := "\uFEFFid,name,date,time,cost\nx1,Boda,2025-05-10,18:00,900\n"
	got, err := FromCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "x1" || got[0].Name != "Boda" || got[0].Cost != 900 {
		t.Errorf("entries = %+v", got)
	}
}

func TestCSVRoundTrip_KeepsSurroundingSpaces(t *testing.T) {
	entries := []model.AgendaEntry{
		{ID: "p1", Name: "  Ana ", Address: " Calle 5  ", Date: date(2025, 4, 1), Time: "11:00", Cost: 10},
	}
	out, err := ToCSV(entries)
	if err != nil {
		t.Fatal(err)
	}
	back, err := FromCSV(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != 1 || back[0] != entries[0] {
		t.Errorf("round trip = %+v, want %+v", back, entries)
	}
}

func TestFromCSV_TrimsParsedColumns(t *testing.T) {
	in := "id,name,date,time,cost\n q9 ,Fiesta, 2025-06-02 , 9:30 , 120 \n"
	got, err := FromCSV(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	e := got[0]
	if e.ID != "q9" || e.Date != date(2025, 6, 2) || e.Time != "09:30" || e.Cost != 120 {
		t.Errorf("entry = %+v", e)
	}
}
