// Package agenda manages the Agenda sheet and exports schedules as iCalendar,
// CSV and FullCalendar feeds.
package agenda

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("agenda entry not found")

// Manager edits the agenda of one book in place.
type Manager struct {
	book *workbook.Book
}

// NewManager returns a manager over b's agenda.
func NewManager(b *workbook.Book) *Manager {
	return &Manager{book: b}
}

// Patch holds the fields to change in Update. Nil fields are left as they are.
type Patch struct {
	Name    *string
	Address *string
	Date    *time.Time
	Time    *string
	Cost    *float64
}

// List returns a copy of the agenda ordered by date, then time, then name.
func (m *Manager) List() []model.AgendaEntry {
	out := append([]model.AgendaEntry(nil), m.book.Agenda...)
	Sort(out)
	return out
}

// Sort orders entries by date, then time, then name.
func Sort(entries []model.AgendaEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.Name < b.Name
	})
}

// Get returns the entry with the given ID.
func (m *Manager) Get(id string) (model.AgendaEntry, error) {
	i := m.index(id)
	if i < 0 {
		return model.AgendaEntry{}, fmt.Errorf("agenda entry %s: %w", id, ErrNotFound)
	}
	return m.book.Agenda[i], nil
}

// Add stores e and returns it with its assigned ID. A caller-supplied ID is
// kept unless another entry already uses it.
func (m *Manager) Add(e model.AgendaEntry) model.AgendaEntry {
	if e.ID == "" || m.index(e.ID) >= 0 {
		e.ID = uuid.NewString()
	}
	m.book.Agenda = append(m.book.Agenda, e)
	return e
}

// Update applies p to the entry with the given ID.
func (m *Manager) Update(id string, p Patch) (model.AgendaEntry, error) {
	i := m.index(id)
	if i < 0 {
		return model.AgendaEntry{}, fmt.Errorf("agenda entry %s: %w", id, ErrNotFound)
	}
	p.apply(&m.book.Agenda[i])
	return m.book.Agenda[i], nil
}

func (p Patch) apply(e *model.AgendaEntry) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Address != nil {
		e.Address = *p.Address
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Cost != nil {
		e.Cost = *p.Cost
	}
}

// Delete removes the entry with the given ID.
func (m *Manager) Delete(id string) error {
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("agenda entry %s: %w", id, ErrNotFound)
	}
	m.book.Agenda = append(m.book.Agenda[:i], m.book.Agenda[i+1:]...)
	return nil
}

// Import upserts entries by ID and reports how many were added and replaced.
func (m *Manager) Import(entries []model.AgendaEntry) (added, replaced int) {
	for _, e := range entries {
		if i := m.index(e.ID); e.ID != "" && i >= 0 {
			m.book.Agenda[i] = e
			replaced++
			continue
		}
		m.Add(e)
		added++
	}
	return added, replaced
}

func (m *Manager) index(id string) int {
	for i, e := range m.book.Agenda {
		if e.ID == id {
			return i
		}
	}
	return -1
}
