package model

import "time"

// AgendaEntry is one row of the Agenda sheet. It is independent of Event_Log.
type AgendaEntry struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Date    time.Time `json:"date"`
	Time    string    `json:"time"` // "15:04", empty when unscheduled
	Cost    float64   `json:"cost"`
}
