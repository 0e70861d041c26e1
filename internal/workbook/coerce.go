package workbook

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var truthy = map[string]bool{
	"si": true, "sí": true, "true": true, "1": true, "x": true,
	"yes": true, "y": true, "efectuado": true, "confirmado": true, "confirmed": true,
}

var falsy = map[string]bool{
	"no": true, "false": true, "0": true, "n": true, "": true,
	"pendiente": true, "pending": true,
}

// parseFlag reads a yes/no cell. ok is false for values that are neither.
func parseFlag(raw string) (v bool, ok bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if truthy[s] {
		return true, true
	}
	if falsy[s] {
		return false, true
	}
	return false, false
}

var numberCleaner = strings.NewReplacer("$", "", ",", "", "MXN", "", "mxn", "", "%", "", " ", "", " ", "")

// parseNumber reads a numeric cell. Currency symbols, thousands separators
// and percent signs are ignored. Empty cells report present=false.
func parseNumber(raw string) (v float64, present bool, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, true
	}
	s = numberCleaner.Replace(s)
	if s == "" || s == "-" {
		return 0, false, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, true, false
	}
	return f, true, true
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2/1/06",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// parseDate reads a date cell. Numeric values are treated as Excel serial
// dates. Empty cells return the zero time with ok=true.
func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

var clockLayouts = []string{"15:04", "15:04:05", "3:04 PM", "3:04PM", "3:04 pm", "3:04pm", "3 PM", "3PM", "2006-01-02 15:04:05"}

// parseClock reads a time-of-day cell and normalises it to "15:04".
// Fractional day values written by Excel are accepted.
func parseClock(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", true
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04"), true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f < 1 {
		mins := int(math.Round(f * 24 * 60))
		return time.Date(0, 1, 1, mins/60, mins%60, 0, 0, time.UTC).Format("15:04"), true
	}
	return "", false
}

// ParseClock exposes the time-of-day parser to form and API input.
func ParseClock(raw string) (string, bool) { return parseClock(raw) }

// ParseDate exposes the date parser to form and API input.
func ParseDate(raw string) (time.Time, bool) { return parseDate(raw) }

// ParseFlag exposes the yes/no parser to form and API input.
func ParseFlag(raw string) (bool, bool) { return parseFlag(raw) }

// ParseNumber exposes the number parser to form input. A blank value
// reports present=false.
func ParseNumber(raw string) (v float64, present bool, ok bool) { return parseNumber(raw) }

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
