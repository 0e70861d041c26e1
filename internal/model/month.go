package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month identifies a calendar month of a specific year.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether t falls inside m.
func (m Month) Contains(t time.Time) bool {
	return !t.IsZero() && t.Year() == m.Year && t.Month() == m.Month
}

// Start returns midnight UTC of the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether m was never set.
func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Before reports whether m is strictly earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// String renders the month as "2025-03".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label renders the short Spanish label used in the workbook ("Mar").
func (m Month) Label() string {
	if m.Month < time.January || m.Month > time.December {
		return ""
	}
	return SpanishMonths[m.Month-1]
}

// MarshalText implements encoding.TextMarshaler so months render as "2025-03" in JSON.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Month) UnmarshalText(b []byte) error {
	parsed, ok := ParseMonth(string(b), 0)
	if !ok || parsed.Year == 0 {
		return fmt.Errorf("invalid month %q", string(b))
	}
	*m = parsed
	return nil
}

// SpanishMonths are the month labels used by the workbook's Mes column.
var SpanishMonths = [12]string{
	"Ene", "Feb", "Mar", "Abr", "May", "Jun",
	"Jul", "Ago", "Sep", "Oct", "Nov", "Dic",
}

var monthNames = map[string]time.Month{
	"ene": time.January, "enero": time.January, "jan": time.January, "january": time.January,
	"feb": time.February, "febrero": time.February, "february": time.February,
	"mar": time.March, "marzo": time.March, "march": time.March,
	"abr": time.April, "abril": time.April, "apr": time.April, "april": time.April,
	"may": time.May, "mayo": time.May,
	"jun": time.June, "junio": time.June, "june": time.June,
	"jul": time.July, "julio": time.July, "july": time.July,
	"ago": time.August, "agosto": time.August, "aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "septiembre": time.September, "september": time.September,
	"oct": time.October, "octubre": time.October, "october": time.October,
	"nov": time.November, "noviembre": time.November, "november": time.November,
	"dic": time.December, "diciembre": time.December, "dec": time.December, "december": time.December,
}

// ParseMonth accepts "2025-03", "03/2025", "2025-03-14", "Mar", "Mar 2025"
// or "marzo". Labels without a year take defaultYear.
func ParseMonth(s string, defaultYear int) (Month, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Month{}, false
	}

	for _, layout := range []string{"2006-01", "2006-1", "01/2006", "1/2006", "2006-01-02", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthOf(t), true
		}
	}

	fields := strings.Fields(strings.ToLower(strings.NewReplacer("-", " ", "/", " ", ".", " ").Replace(s)))
	if len(fields) == 0 {
		return Month{}, false
	}
	mon, ok := monthNames[fields[0]]
	if !ok {
		if n, err := strconv.Atoi(fields[0]); err == nil && n >= 1 && n <= 12 && len(fields) == 1 {
			return Month{Year: defaultYear, Month: time.Month(n)}, true
		}
		return Month{}, false
	}
	year := defaultYear
	if len(fields) > 1 {
		if y, err := strconv.Atoi(fields[1]); err == nil {
			if y < 100 {
				y += 2000
			}
			year = y
		}
	}
	return Month{Year: year, Month: mon}, true
}

// MonthsOf returns the twelve months of year in order.
func MonthsOf(year int) []Month {
	out := make([]Month, 12)
	for i := range out {
		out[i] = Month{Year: year, Month: time.Month(i + 1)}
	}
	return out
}
