// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatMoney formats a peso amount with thousands separators and two
// decimals, e.g. -630 -> "-$630.00".
func FormatMoney(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatMoneyPtr formats an optional amount; nil renders blank.
func FormatMoneyPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatMoney(*v)
}

// FormatPercent formats an optional 0-1 ratio as a percentage; nil renders blank.
func FormatPercent(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%.1f%%", *f*100)
}

// FormatRatio formats an optional plain ratio with two decimals.
func FormatRatio(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *f)
}

// FormatNumber adds comma separators to an integer.
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatCompact shortens large amounts for chart labels: 1234 -> "1.2K".
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// FormatDate renders a calendar date, blank when zero.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// FormatFlag renders a yes/no cell.
func FormatFlag(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

// FormatDelta formats the change between two amounts with an explicit sign.
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + FormatMoney(delta)
	}
	return FormatMoney(delta)
}
