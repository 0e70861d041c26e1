// Package server exposes the workbook over a small JSON/HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/theirongolddev/gbdash/internal/agenda"
	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// Config controls the API runtime behavior.
type Config struct {
	Workbook string
	Locale   workbook.Locale
	// Year is the default reporting year; zero means the current year.
	Year    int
	Options pipeline.Options
	ICS     agenda.ICSOptions
	Addr    string
}

// Service serves one workbook. Every request loads the workbook, and
// requests that change it save it back, all under one lock.
type Service struct {
	cfg     Config
	log     *slog.Logger
	metrics *metrics
	now     func() time.Time

	mu sync.Mutex
}

// New returns a service for cfg. A nil logger discards logs.
func New(cfg Config, log *slog.Logger) *Service {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8765"
	}
	if cfg.Locale == "" {
		cfg.Locale = workbook.LocaleES
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{
		cfg:     cfg,
		log:     log,
		metrics: newMetrics(prometheus.NewRegistry()),
		now:     time.Now,
	}
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("serving", slog.String("addr", s.cfg.Addr), slog.String("workbook", s.cfg.Workbook))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
}

// read loads the workbook and passes it to fn under the lock. Month labels
// without a year are read as year (the default year when zero).
func (s *Service) read(year int, fn func(*pipeline.LoadResult) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lr, err := s.load(year)
	if err != nil {
		return err
	}
	return fn(lr)
}

// write loads the workbook, lets fn change it and saves it when fn succeeds.
// Like read, year-less month labels take year.
func (s *Service) write(year int, fn func(*pipeline.LoadResult) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	lr, err := s.load(year)
	if err != nil {
		return err
	}
	if err := fn(lr); err != nil {
		return err
	}
	if err := lr.Save(); err != nil {
		s.metrics.saveErrors.Inc()
		return err
	}
	s.metrics.saves.Inc()
	return nil
}

func (s *Service) load(year int) (*pipeline.LoadResult, error) {
	lr, err := pipeline.Load(s.cfg.Workbook, s.cfg.Locale, s.year(year))
	if err != nil {
		return nil, err
	}
	s.metrics.loadSeconds.Observe(lr.LoadTime.Seconds())
	s.metrics.warnings.Set(float64(len(lr.Warnings)))
	for _, w := range lr.Warnings {
		s.log.Debug("workbook warning",
			slog.String("sheet", w.Sheet), slog.Int("row", w.Row),
			slog.String("column", w.Column), slog.String("reason", w.Reason))
	}
	return lr, nil
}

// year resolves a requested year against the configured default.
func (s *Service) year(requested int) int {
	switch {
	case requested > 0:
		return requested
	case s.cfg.Year > 0:
		return s.cfg.Year
	default:
		return s.now().Year()
	}
}
