package eventlog

import (
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/gbdash/internal/model"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool { return &b }
func floatp(f float64) *float64 { return &f }

func TestInputNew(t *testing.T) {
	e, err := Input{
		Date:       strp("2025-03-14"),
		StartTime:  strp("17:00"),
		EndTime:    strp("9:30 PM"),
		ClientName: strp(" Ana "),
		Package:    strp("Retro"),
		Price:      floatp(3200),
		PizzaAddon: boolp(true),
	}.New()
	if err != nil {
		t.Fatal(err)
	}
	if !e.Date.Equal(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", e.Date)
	}
	if e.StartTime != "17:00" || e.EndTime != "21:30" || e.ClientName != "Ana" {
		t.Errorf("event = %+v", e)
	}
	if e.Price != 3200 || !e.PizzaAddon || e.VariableCost != nil {
		t.Errorf("event = %+v", e)
	}
}

func TestInputNew_RequiresDate(t *testing.T) {
	if _, err := (Input{ClientName: strp("x")}).New(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if _, err := (Input{Date: strp("mañana")}).New(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestInputApply_Partial(t *testing.T) {
	e := model.Event{ID: 4, ClientName: "Luis", Price: 100, VariableCost: model.Float(40)}

	if err := (Input{Price: floatp(150)}).Apply(&e); err != nil {
		t.Fatal(err)
	}
	if e.Price != 150 || e.ClientName != "Luis" || *e.VariableCost != 40 {
		t.Errorf("after price patch: %+v", e)
	}

	if err := (Input{ClearVariableCost: true}).Apply(&e); err != nil {
		t.Fatal(err)
	}
	if e.VariableCost != nil {
		t.Errorf("VariableCost = %v, want nil", *e.VariableCost)
	}

	if err := (Input{StartTime: strp("noon-ish")}).Apply(&e); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad clock err = %v", err)
	}
}
