package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// BookingRatioFormula selects how MonthlySummary.BookingRatio is derived.
type BookingRatioFormula string

const (
	// BookingRatioConfirmed divides confirmed events by all events in the month.
	BookingRatioConfirmed BookingRatioFormula = "confirmed"
	// BookingRatioFunnel divides the funnel's confirmed bookings by the
	// month's events ("Reservas/Meta").
	BookingRatioFunnel BookingRatioFormula = "funnel"
	// BookingRatioTarget divides the month's events by the target bookings
	// assumption.
	BookingRatioTarget BookingRatioFormula = "target"
)

// BookingRatioFormulas lists the accepted formula names.
var BookingRatioFormulas = []BookingRatioFormula{
	BookingRatioConfirmed, BookingRatioFunnel, BookingRatioTarget,
}

// ParseBookingRatio validates a formula name. Empty selects the default.
func ParseBookingRatio(s string) (BookingRatioFormula, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return BookingRatioConfirmed, nil
	}
	for _, f := range BookingRatioFormulas {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown booking ratio formula %q (want confirmed, funnel or target)", s)
}

// Options tune the monthly computation.
type Options struct {
	// FixedCostsFromMonth is the first month of the year charged with the
	// monthly fixed costs. Zero means January.
	FixedCostsFromMonth time.Month
	// OnlyConfirmed restricts the monthly figures to confirmed events.
	OnlyConfirmed bool
	BookingRatio  BookingRatioFormula
}

// DefaultOptions charges fixed costs every month and counts every event.
func DefaultOptions() Options {
	return Options{
		FixedCostsFromMonth: time.January,
		BookingRatio:        BookingRatioConfirmed,
	}
}

// Key identifies the options in the summary cache.
func (o Options) Key() string {
	scope := "all"
	if o.OnlyConfirmed {
		scope = "confirmed"
	}
	return fmt.Sprintf("%s|%d|%s", o.bookingRatio(), o.fixedFrom(), scope)
}

func (o Options) fixedFrom() time.Month {
	if o.FixedCostsFromMonth < time.January {
		return time.January
	}
	return o.FixedCostsFromMonth
}

func (o Options) bookingRatio() BookingRatioFormula {
	if o.BookingRatio == "" {
		return BookingRatioConfirmed
	}
	return o.BookingRatio
}
