package agenda

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// ErrInvalidInput wraps field errors reported while reading an Input.
var ErrInvalidInput = errors.New("invalid agenda input")

// Input is an agenda entry as typed into a form or posted as JSON.
type Input struct {
	Name    *string  `json:"name,omitempty"`
	Address *string  `json:"address,omitempty"`
	Date    *string  `json:"date,omitempty"`
	Time    *string  `json:"time,omitempty"`
	Cost    *float64 `json:"cost,omitempty"`
}

// Patch converts in to a Patch, parsing date and time.
func (in Input) Patch() (Patch, error) {
	p := Patch{Name: trimmed(in.Name), Address: trimmed(in.Address), Cost: in.Cost}
	if in.Date != nil {
		d, ok := workbook.ParseDate(*in.Date)
		if !ok {
			return Patch{}, fmt.Errorf("%w: date %q", ErrInvalidInput, *in.Date)
		}
		p.Date = &d
	}
	if in.Time != nil {
		c, ok := workbook.ParseClock(*in.Time)
		if !ok {
			return Patch{}, fmt.Errorf("%w: time %q", ErrInvalidInput, *in.Time)
		}
		p.Time = &c
	}
	return p, nil
}

// Entry builds a new entry from in. A name is required.
func (in Input) Entry() (model.AgendaEntry, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return model.AgendaEntry{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	p, err := in.Patch()
	if err != nil {
		return model.AgendaEntry{}, err
	}
	var e model.AgendaEntry
	p.apply(&e)
	return e, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

