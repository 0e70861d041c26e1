package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// LoadResult holds a loaded workbook and what it took to read it.
type LoadResult struct {
	Path     string
	Book     *workbook.Book
	Warnings []workbook.Warning
	// Created is set when the workbook did not exist and an empty one was
	// returned in its place.
	Created  bool
	LoadTime time.Duration
}

// Load reads the workbook at path. Month labels without a year are read as
// defaultYear. A missing file yields an empty book so a first run can start
// capturing events; every other read error is returned.
func Load(path string, locale workbook.Locale, defaultYear int) (*LoadResult, error) {
	start := time.Now()
	book, warnings, err := workbook.Load(path,
		workbook.WithLocale(locale), workbook.WithDefaultYear(defaultYear))
	if errors.Is(err, fs.ErrNotExist) {
		return &LoadResult{Path: path, Book: workbook.New(locale), Created: true, LoadTime: time.Since(start)}, nil
	}
	if err != nil {
		return nil, err
	}
	return &LoadResult{Path: path, Book: book, Warnings: warnings, LoadTime: time.Since(start)}, nil
}

// Save writes the book back to the path it was loaded from.
func (r *LoadResult) Save() error {
	if err := workbook.Save(r.Path, r.Book); err != nil {
		return err
	}
	r.Created = false
	return nil
}

// Summaries computes the monthly summaries of year straight from the book.
func (r *LoadResult) Summaries(year int, opts Options) []model.MonthlySummary {
	return ComputeYear(r.Book, year, opts)
}

// Consolidate stores the derived summaries of year in the Monthly and
// Summary sheets. Months of other years already in the sheet are kept and
// every month's hand-entered review count is preserved.
func Consolidate(b *workbook.Book, year int, opts Options) (model.AnnualSummary, error) {
	if year <= 0 {
		return model.AnnualSummary{}, fmt.Errorf("consolidating: invalid year %d", year)
	}
	monthly := ComputeYear(b, year, opts)

	kept := b.Monthly[:0:0]
	for _, m := range b.Monthly {
		if m.Month.Year != year {
			kept = append(kept, m)
		}
	}
	b.Monthly = append(kept, monthly...)

	annual := ComputeAnnual(monthly)
	b.Summary = &annual
	return annual, nil
}
