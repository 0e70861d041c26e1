package workbook

import "testing"

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"Dirección":            "direccion",
		" TELÉFONO ":           "telefono",
		"Add-on Pizza (Sí/No)": "addonpizzasino",
		"variable_cost":        "variablecost",
		"Reservas/Meta (%)":    "reservasmeta",
	}
	for in, want := range tests {
		if got := normalizeHeader(in); got != want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHeaderIndex_PrefersExactMatch(t *testing.T) {
	header := []string{"Precio", "Costo variable (MXN)", "Precio (MXN)"}
	idx := headerIndex(header, eventColumns)
	if idx["price"] != 2 {
		t.Errorf("price index = %d, want 2", idx["price"])
	}
	if idx["variable_cost"] != 1 {
		t.Errorf("variable_cost index = %d, want 1", idx["variable_cost"])
	}
	if _, ok := idx["notes"]; ok {
		t.Error("notes should be absent")
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		present bool
		ok      bool
	}{
		{"", 0, false, true},
		{"1500", 1500, true, true},
		{"$1,500.50", 1500.5, true, true},
		{"12%", 12, true, true},
		{"  -", 0, false, true},
		{"abc", 0, true, false},
	}
	for _, tt := range tests {
		v, present, ok := parseNumber(tt.in)
		if v != tt.want || present != tt.present || ok != tt.ok {
			t.Errorf("parseNumber(%q) = (%v, %v, %v), want (%v, %v, %v)",
				tt.in, v, present, ok, tt.want, tt.present, tt.ok)
		}
	}
}

func TestParseFlag(t *testing.T) {
	for _, in := range []string{"si", "Sí", "TRUE", "1", "x", "yes", "Efectuado"} {
		if v, ok := parseFlag(in); !v || !ok {
			t.Errorf("parseFlag(%q) = (%v, %v), want true", in, v, ok)
		}
	}
	for _, in := range []string{"", "no", "Pendiente", "0"} {
		if v, ok := parseFlag(in); v || !ok {
			t.Errorf("parseFlag(%q) = (%v, %v), want false", in, v, ok)
		}
	}
	if _, ok := parseFlag("quizás"); ok {
		t.Error("parseFlag(quizás) should not be ok")
	}
}

func TestParseDateAndClock(t *testing.T) {
	d, ok := parseDate("45731")
	if !ok || d.Format("2006-01-02") != "2025-03-15" {
		t.Errorf("parseDate(serial) = %v, %v", d, ok)
	}
	d, ok = parseDate("14/03/2025")
	if !ok || d.Format("2006-01-02") != "2025-03-14" {
		t.Errorf("parseDate(d/m/Y) = %v, %v", d, ok)
	}
	if _, ok := parseDate("ayer"); ok {
		t.Error("parseDate(ayer) should fail")
	}

	tests := map[string]string{
		"16:00":    "16:00",
		"9:05":     "09:05",
		"4:30 PM":  "16:30",
		"0.5":      "12:00",
		"":         "",
		"10:00:59": "10:00",
	}
	for in, want := range tests {
		if got, ok := parseClock(in); !ok || got != want {
			t.Errorf("parseClock(%q) = %q, %v, want %q", in, got, ok, want)
		}
	}
}
