package eventlog

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/gbdash/internal/model"
)

func TestToCSV(t *testing.T) {
	events := List(testBook(), Filter{Month: model.Month{Year: 2025, Month: time.March}, Status: StatusPending})
	events[0].VariableCost = model.Float(80)
	events[1].Notes = "Piñata, \"grande\""

	data, err := ToCSV(events, model.Assumptions{DefaultVariableCost: 50})
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if strings.Join(rows[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("header = %v", rows[0])
	}

	// Carla (10:00) sorts before Beto (18:00) on March 2.
	carla, beto := rows[1], rows[2]
	if carla[0] != "5" || carla[1] != "2025-03-02" || carla[2] != "10:00" {
		t.Errorf("first row = %v", carla)
	}
	if carla[13] != "80" || carla[14] != "80" {
		t.Errorf("override cost = %q / %q, want 80 / 80", carla[13], carla[14])
	}
	if beto[13] != "" || beto[14] != "50" {
		t.Errorf("default cost = %q / %q, want empty / 50", beto[13], beto[14])
	}
	if beto[15] != model.StatusPending || beto[16] != "Piñata, \"grande\"" {
		t.Errorf("status/notes = %q / %q", beto[15], beto[16])
	}
}

func TestToCSV_Empty(t *testing.T) {
	data, err := ToCSV(nil, model.Assumptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "\n"); got != 1 {
		t.Errorf("lines = %d, want only the header", got)
	}
}
