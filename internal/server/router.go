package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/eventlog"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// Handler returns the API routes.
func (s *Service) Handler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(requestID)
	mux.Use(requestLogger(s.log))
	mux.Use(s.metrics.instrument)
	mux.Use(middleware.Recoverer)

	mux.Get("/healthz", s.handleHealth)
	mux.Method(http.MethodGet, "/metrics", s.metrics.handler())

	mux.Route("/v1", func(r chi.Router) {
		r.Get("/dashboard", s.handleDashboard)
		r.Get("/monthly", s.handleMonthly)
		r.Get("/annual", s.handleAnnual)
		r.Post("/consolidate", s.handleConsolidate)

		r.Get("/events", s.handleListEvents)
		r.Post("/events", s.handleCreateEvent)
		r.Get("/events.ics", s.handleEventsICS)
		r.Get("/events.csv", s.handleEventsCSV)
		r.Patch("/events/{id}", s.handleUpdateEvent)
		r.Delete("/events/{id}", s.handleDeleteEvent)
		r.Get("/calendar", s.handleCalendar)

		r.Get("/ads", s.handleAds)
		r.Get("/funnel", s.handleFunnel)

		r.Get("/agenda", s.handleListAgenda)
		r.Post("/agenda", s.handleCreateAgenda)
		r.Get("/agenda.ics", s.handleAgendaICS)
		r.Get("/agenda.csv", s.handleAgendaCSV)
		r.Put("/agenda/{id}", s.handleUpdateAgenda)
		r.Delete("/agenda/{id}", s.handleDeleteAgenda)

		r.Get("/sheets", s.handleListSheets)
		r.Get("/sheets/{name}", s.handleExportSheet)
	})

	return mux
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	_ = enc.Encode(v)
}

// errBadRequest marks request errors that are the caller's fault.
var errBadRequest = errors.New("bad request")

// writeError maps an error to a status code and a {"error": ...} body.
func (s *Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, eventlog.ErrNotFound), errors.Is(err, agenda.ErrNotFound),
		errors.Is(err, workbook.ErrNoSheet):
		status = http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, eventlog.ErrInvalidInput),
		errors.Is(err, agenda.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, workbook.ErrReadOnlyFormat):
		status = http.StatusConflict
	}
	if status >= 500 {
		s.log.ErrorContext(r.Context(), "request failed", "err", err, "rid", RID(r.Context()))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errBadRequest}, args...)...)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("decoding body: %v", err)
	}
	return nil
}

// queryYear reads ?year=, zero when absent.
func queryYear(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, nil
	}
	y, err := strconv.Atoi(raw)
	if err != nil || y < 1900 || y > 9999 {
		return 0, badRequest("year %q must be a four-digit number", raw)
	}
	return y, nil
}

func eventID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, badRequest("event id %q must be a positive integer", chi.URLParam(r, "id"))
	}
	return id, nil
}
