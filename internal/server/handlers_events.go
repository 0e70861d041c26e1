package server

import (
	"net/http"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/eventlog"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"
)

// eventFilter reads the ?month=, ?status= and ?q= filters.
func (s *Service) eventFilter(r *http.Request) (eventlog.Filter, error) {
	q := r.URL.Query()
	var f eventlog.Filter
	if raw := q.Get("month"); raw != "" {
		m, ok := model.ParseMonth(raw, s.year(0))
		if !ok {
			return f, badRequest("month %q is not a month", raw)
		}
		f.Month = m
	}
	status, err := eventlog.ParseStatus(q.Get("status"))
	if err != nil {
		return f, badRequest("%v", err)
	}
	f.Status = status
	f.Search = q.Get("q")
	return f, nil
}

func (s *Service) handleListEvents(w http.ResponseWriter, r *http.Request) {
	f, err := s.eventFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var events []model.Event
	err = s.read(0, func(lr *pipeline.LoadResult) error {
		events = eventlog.List(lr.Book, f)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var in eventlog.Input
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := in.New()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	err = s.write(0, func(lr *pipeline.LoadResult) error {
		e = eventlog.Add(lr.Book, e)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Service) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in eventlog.Input
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	var e model.Event
	err = s.write(0, func(lr *pipeline.LoadResult) error {
		cur, err := eventlog.Get(lr.Book, id)
		if err != nil {
			return err
		}
		if err := in.Apply(&cur); err != nil {
			return err
		}
		e, err = eventlog.Update(lr.Book, id, cur)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Service) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	err = s.write(0, func(lr *pipeline.LoadResult) error {
		return eventlog.Delete(lr.Book, id)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleEventsICS(w http.ResponseWriter, r *http.Request) {
	var body []byte
	err := s.read(0, func(lr *pipeline.LoadResult) error {
		var err error
		body, err = agenda.EventsICS(eventlog.List(lr.Book, eventlog.Filter{}), s.cfg.ICS)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAttachment(w, "text/calendar; charset=utf-8", "eventos.ics", body)
}

// handleEventsCSV exports the events matching the list filters.
func (s *Service) handleEventsCSV(w http.ResponseWriter, r *http.Request) {
	f, err := s.eventFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var body []byte
	err = s.read(0, func(lr *pipeline.LoadResult) error {
		var err error
		body, err = eventlog.ToCSV(eventlog.List(lr.Book, f), lr.Book.Assumptions.Resolve())
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "eventos.csv", body)
}

// handleCalendar serves the event log as a FullCalendar event feed.
func (s *Service) handleCalendar(w http.ResponseWriter, r *http.Request) {
	var feed []agenda.FeedEvent
	err := s.read(0, func(lr *pipeline.LoadResult) error {
		feed = agenda.CalendarFeed(eventlog.List(lr.Book, eventlog.Filter{}), s.cfg.ICS)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

func writeAttachment(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	_, _ = w.Write(body)
}
