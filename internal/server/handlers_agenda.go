package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"
)

func (s *Service) handleListAgenda(w http.ResponseWriter, r *http.Request) {
	var entries []model.AgendaEntry
	err := s.read(0, func(lr *pipeline.LoadResult) error {
		entries = agenda.NewManager(lr.Book).List()
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []model.AgendaEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Service) handleCreateAgenda(w http.ResponseWriter, r *http.Request) {
	var in agenda.Input
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := in.Entry()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	err = s.write(0, func(lr *pipeline.LoadResult) error {
		e = agenda.NewManager(lr.Book).Add(e)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Service) handleUpdateAgenda(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in agenda.Input
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := in.Patch()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var e model.AgendaEntry
	err = s.write(0, func(lr *pipeline.LoadResult) error {
		var err error
		e, err = agenda.NewManager(lr.Book).Update(id, p)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Service) handleDeleteAgenda(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.write(0, func(lr *pipeline.LoadResult) error {
		return agenda.NewManager(lr.Book).Delete(id)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) handleAgendaICS(w http.ResponseWriter, r *http.Request) {
	var body []byte
	err := s.read(0, func(lr *pipeline.LoadResult) error {
		var err error
		body, err = agenda.ToICS(agenda.NewManager(lr.Book).List(), s.cfg.ICS)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAttachment(w, "text/calendar; charset=utf-8", "agenda.ics", body)
}

func (s *Service) handleAgendaCSV(w http.ResponseWriter, r *http.Request) {
	var body []byte
	err := s.read(0, func(lr *pipeline.LoadResult) error {
		var err error
		body, err = agenda.ToCSV(agenda.NewManager(lr.Book).List())
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "agenda.csv", body)
}
