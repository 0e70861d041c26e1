package eventlog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// ErrInvalidInput wraps every field error reported by Input.Apply.
var ErrInvalidInput = errors.New("invalid event input")

// Input is a partial event as typed into a form, a flag set or a JSON body.
// Nil fields are left untouched by Apply.
type Input struct {
	Date          *string  `json:"date,omitempty"`
	StartTime     *string  `json:"start_time,omitempty"`
	EndTime       *string  `json:"end_time,omitempty"`
	ClientName    *string  `json:"client_name,omitempty"`
	Address       *string  `json:"address,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	Zone          *string  `json:"zone,omitempty"`
	Package       *string  `json:"package,omitempty"`
	Price         *float64 `json:"price,omitempty"`
	PizzaAddon    *bool    `json:"pizza_addon,omitempty"`
	PizzaMargin   *float64 `json:"pizza_margin,omitempty"`
	RetroExterior *bool    `json:"retro_exterior,omitempty"`
	VariableCost  *float64 `json:"variable_cost,omitempty"`
	// ClearVariableCost drops the event's own variable cost so the
	// assumptions default applies again.
	ClearVariableCost bool    `json:"clear_variable_cost,omitempty"`
	Confirmed         *bool   `json:"confirmed,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

// Apply copies the set fields of in onto e.
func (in Input) Apply(e *model.Event) error {
	if in.Date != nil {
		d, ok := workbook.ParseDate(*in.Date)
		if !ok || d.IsZero() {
			return fmt.Errorf("%w: date %q", ErrInvalidInput, *in.Date)
		}
		e.Date = d
	}
	for _, f := range []struct {
		name string
		in   *string
		out  *string
	}{
		{"start_time", in.StartTime, &e.StartTime},
		{"end_time", in.EndTime, &e.EndTime},
	} {
		if f.in == nil {
			continue
		}
		c, ok := workbook.ParseClock(*f.in)
		if !ok {
			return fmt.Errorf("%w: %s %q", ErrInvalidInput, f.name, *f.in)
		}
		*f.out = c
	}

	setString(&e.ClientName, in.ClientName)
	setString(&e.Address, in.Address)
	setString(&e.Phone, in.Phone)
	setString(&e.Zone, in.Zone)
	setString(&e.Package, in.Package)
	setString(&e.Notes, in.Notes)

	if in.Price != nil {
		e.Price = *in.Price
	}
	if in.PizzaAddon != nil {
		e.PizzaAddon = *in.PizzaAddon
	}
	if in.PizzaMargin != nil {
		e.PizzaMargin = *in.PizzaMargin
	}
	if in.RetroExterior != nil {
		e.RetroExterior = *in.RetroExterior
	}
	switch {
	case in.ClearVariableCost:
		e.VariableCost = nil
	case in.VariableCost != nil:
		e.VariableCost = model.Float(*in.VariableCost)
	}
	if in.Confirmed != nil {
		e.Confirmed = *in.Confirmed
	}
	return nil
}

// New builds a fresh event from in. A date is required.
func (in Input) New() (model.Event, error) {
	if in.Date == nil || strings.TrimSpace(*in.Date) == "" {
		return model.Event{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	var e model.Event
	if err := in.Apply(&e); err != nil {
		return model.Event{}, err
	}
	return e, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
