package server

import (
	"net/http"

	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/pipeline"
)

// Dashboard is the payload of GET /v1/dashboard.
type Dashboard struct {
	Year     int                    `json:"year"`
	Years    []int                  `json:"years"`
	YTD      model.KPIs             `json:"ytd"`
	Annual   model.AnnualSummary    `json:"annual"`
	Monthly  []model.MonthlySummary `json:"monthly"`
	Warnings int                    `json:"warnings"`
}

func (s *Service) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	year = s.year(year)

	var d Dashboard
	err = s.read(year, func(lr *pipeline.LoadResult) error {
		monthly := pipeline.ComputeYear(lr.Book, year, s.cfg.Options)
		through := model.MonthOf(s.now())
		if through.Year != year {
			through = model.Month{Year: year, Month: 12}
		}
		d = Dashboard{
			Year:     year,
			Years:    pipeline.Years(lr.Book.Events),
			YTD:      pipeline.YearToDate(monthly, through),
			Annual:   pipeline.ComputeAnnual(monthly),
			Monthly:  monthly,
			Warnings: len(lr.Warnings),
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Service) handleMonthly(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var monthly []model.MonthlySummary
	err = s.read(year, func(lr *pipeline.LoadResult) error {
		monthly = pipeline.ComputeYear(lr.Book, s.year(year), s.cfg.Options)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, monthly)
}

func (s *Service) handleAnnual(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var annual model.AnnualSummary
	err = s.read(year, func(lr *pipeline.LoadResult) error {
		annual = pipeline.ComputeAnnual(pipeline.ComputeYear(lr.Book, s.year(year), s.cfg.Options))
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, annual)
}

func (s *Service) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var annual model.AnnualSummary
	err = s.write(year, func(lr *pipeline.LoadResult) error {
		var err error
		annual, err = pipeline.Consolidate(lr.Book, s.year(year), s.cfg.Options)
		return err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, annual)
}

func (s *Service) handleAds(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var rows []pipeline.AdsRow
	err = s.read(year, func(lr *pipeline.LoadResult) error {
		rows = pipeline.AdsRows(lr.Book.Ads, year)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Service) handleFunnel(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var rows []pipeline.FunnelRow
	err = s.read(year, func(lr *pipeline.LoadResult) error {
		rows = pipeline.FunnelRows(lr.Book.Funnel, year)
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
