// Package eventlog manages the rows of the Event_Log sheet.
package eventlog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// ErrNotFound is returned when no event has the requested ID.
var ErrNotFound = errors.New("event not found")

// Add appends e to the log with the next free ID and returns the stored row.
func Add(b *workbook.Book, e model.Event) model.Event {
	e.ID = nextID(b.Events)
	b.Events = append(b.Events, e)
	return e
}

// Update replaces the event with the given ID, keeping the ID.
func Update(b *workbook.Book, id int, e model.Event) (model.Event, error) {
	i := indexOf(b.Events, id)
	if i < 0 {
		return model.Event{}, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	e.ID = id
	b.Events[i] = e
	return e, nil
}

// SetConfirmed marks the event as done (Efectuado) or pending.
func SetConfirmed(b *workbook.Book, id int, confirmed bool) (model.Event, error) {
	i := indexOf(b.Events, id)
	if i < 0 {
		return model.Event{}, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	b.Events[i].Confirmed = confirmed
	return b.Events[i], nil
}

// Delete removes the event with the given ID.
func Delete(b *workbook.Book, id int) error {
	i := indexOf(b.Events, id)
	if i < 0 {
		return fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	b.Events = append(b.Events[:i], b.Events[i+1:]...)
	return nil
}

// Get returns the event with the given ID.
func Get(b *workbook.Book, id int) (model.Event, error) {
	i := indexOf(b.Events, id)
	if i < 0 {
		return model.Event{}, fmt.Errorf("event %d: %w", id, ErrNotFound)
	}
	return b.Events[i], nil
}

// Status filters events by lifecycle.
type Status string

const (
	StatusAll       Status = ""
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

// ParseStatus accepts English and Spanish status names.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "todos":
		return StatusAll, nil
	case "pending", "pendiente":
		return StatusPending, nil
	case "confirmed", "done", "efectuado":
		return StatusConfirmed, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Month  model.Month
	Status Status
	Search string
}

// List returns the matching events sorted by date, then start time, then ID.
func List(b *workbook.Book, f Filter) []model.Event {
	var out []model.Event
	for _, e := range b.Events {
		if !f.Month.IsZero() && !f.Month.Contains(e.Date) {
			continue
		}
		switch f.Status {
		case StatusPending:
			if e.Confirmed {
				continue
			}
		case StatusConfirmed:
			if !e.Confirmed {
				continue
			}
		}
		if f.Search != "" && !matches(e, f.Search) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// matches does a case-insensitive substring search over the text fields.
func matches(e model.Event, q string) bool {
	q = strings.ToLower(q)
	for _, field := range []string{e.ClientName, e.Address, e.Zone, e.Package, e.Phone, e.Notes} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func indexOf(events []model.Event, id int) int {
	for i, e := range events {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func nextID(events []model.Event) int {
	maxID := 0
	for _, e := range events {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return maxID + 1
}
