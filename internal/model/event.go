package model

import (
	"strings"
	"time"
)

// Status values written to the Estatus column.
const (
	StatusPending   = "Pendiente"
	StatusConfirmed = "Efectuado"
)

// Package names offered by the business.
var Packages = []string{"Clásico", "Retro", "Clásico + Retro", "Otro"}

// Event is one row of the Event_Log sheet.
type Event struct {
	ID            int       `json:"id"`
	Date          time.Time `json:"date"`
	StartTime     string    `json:"start_time,omitempty"` // "15:04"
	EndTime       string    `json:"end_time,omitempty"`
	ClientName    string    `json:"client_name,omitempty"`
	Address       string    `json:"address,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Zone          string    `json:"zone,omitempty"`
	Package       string    `json:"package,omitempty"`
	Price         float64   `json:"price"`
	PizzaAddon    bool      `json:"pizza_addon"`
	PizzaMargin   float64   `json:"pizza_margin"`
	RetroExterior bool      `json:"retro_exterior"`
	VariableCost  *float64  `json:"variable_cost"`
	Confirmed     bool      `json:"confirmed"`
	Notes         string    `json:"notes,omitempty"`
}

// ResolvedVariableCost returns the event's own variable cost, or the
// assumptions default when the cell was empty.
func (e Event) ResolvedVariableCost(a Assumptions) float64 {
	if e.VariableCost != nil {
		return *e.VariableCost
	}
	return a.DefaultVariableCost
}

// Status returns the Estatus label for the event.
func (e Event) Status() string {
	if e.Confirmed {
		return StatusConfirmed
	}
	return StatusPending
}

// Title is the display name used by calendars.
func (e Event) Title() string {
	switch {
	case strings.TrimSpace(e.ClientName) != "":
		return e.ClientName
	case strings.TrimSpace(e.Zone) != "":
		return e.Zone
	default:
		return "Evento"
	}
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 { return &v }

// NormalizeEventIDs gives every event a unique positive ID. Events without
// an ID, or whose ID was already taken by an earlier row, get max+1.
// It reports how many IDs were assigned.
func NormalizeEventIDs(events []Event) int {
	maxID := 0
	for _, e := range events {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	seen := make(map[int]bool, len(events))
	changed := 0
	for i := range events {
		id := events[i].ID
		if id <= 0 || seen[id] {
			maxID++
			events[i].ID = maxID
			changed++
		}
		seen[events[i].ID] = true
	}
	return changed
}
