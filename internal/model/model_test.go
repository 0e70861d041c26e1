package model

import (
	"testing"
	"time"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in   string
		want Month
	}{
		{"2025-03", Month{2025, time.March}},
		{"03/2025", Month{2025, time.March}},
		{"2025-03-14", Month{2025, time.March}},
		{"Mar", Month{2024, time.March}},
		{"Ene", Month{2024, time.January}},
		{"ago 2025", Month{2025, time.August}},
		{"Diciembre", Month{2024, time.December}},
		{"7", Month{2024, time.July}},
	}
	for _, tt := range tests {
		got, ok := ParseMonth(tt.in, 2024)
		if !ok {
			t.Errorf("ParseMonth(%q) failed", tt.in)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMonth(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseMonth_Invalid(t *testing.T) {
	for _, in := range []string{"", "foo", "13", "2025-13"} {
		if m, ok := ParseMonth(in, 2024); ok {
			t.Errorf("ParseMonth(%q) = %v, want failure", in, m)
		}
	}
}

func TestMonthLabelAndText(t *testing.T) {
	m := Month{Year: 2025, Month: time.October}
	if m.Label() != "Oct" {
		t.Errorf("Label() = %q, want Oct", m.Label())
	}
	b, _ := m.MarshalText()
	var back Month
	if err := back.UnmarshalText(b); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != m {
		t.Errorf("text round trip = %v, want %v", back, m)
	}
}

func TestResolvedVariableCost(t *testing.T) {
	a := Assumptions{DefaultVariableCost: 50}
	if got := (Event{}).ResolvedVariableCost(a); got != 50 {
		t.Errorf("missing cost resolved to %.2f, want 50", got)
	}
	if got := (Event{VariableCost: Float(80)}).ResolvedVariableCost(a); got != 80 {
		t.Errorf("explicit cost resolved to %.2f, want 80", got)
	}
	if got := (Event{VariableCost: Float(0)}).ResolvedVariableCost(a); got != 0 {
		t.Errorf("explicit zero resolved to %.2f, want 0", got)
	}
}

func TestRawAssumptionsResolve(t *testing.T) {
	r := RawAssumptions{MonthlyFixedCosts: Float(1000)}
	a := r.Resolve()
	if a.MonthlyFixedCosts != 1000 || a.DefaultVariableCost != 0 || a.TargetBookings != nil {
		t.Errorf("Resolve() = %+v", a)
	}
}

func TestNormalizeEventIDs(t *testing.T) {
	events := []Event{{ID: 3}, {ID: 0}, {ID: 3}, {ID: 1}}
	if n := NormalizeEventIDs(events); n != 2 {
		t.Errorf("changed = %d, want 2", n)
	}
	want := []int{3, 4, 5, 1}
	for i, e := range events {
		if e.ID != want[i] {
			t.Errorf("events[%d].ID = %d, want %d", i, e.ID, want[i])
		}
	}
}
