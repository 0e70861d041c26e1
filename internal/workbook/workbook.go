// Package workbook reads and writes the business workbook: one spreadsheet
// file holding the event log, assumptions, funnel, ads, agenda and the
// consolidated monthly summary.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/theirongolddev/gbdash/internal/model"
)

// Sheet names. Column names inside each sheet are the de facto schema.
const (
	SheetAssumptions = "Assumptions"
	SheetMonthly     = "Monthly"
	SheetAds         = "Ads"
	SheetFunnel      = "Funnel"
	SheetEvents      = "Event_Log"
	SheetSummary     = "Summary"
	SheetAgenda      = "Agenda"
)

// sheetOrder is the order sheets are written in.
var sheetOrder = []string{
	SheetAssumptions, SheetMonthly, SheetAds, SheetFunnel,
	SheetEvents, SheetSummary, SheetAgenda,
}

// ErrReadOnlyFormat is returned when saving to a format that can only be read.
var ErrReadOnlyFormat = errors.New("workbook format is read-only")

// ErrNoSheet is returned for a sheet name the book does not hold.
var ErrNoSheet = errors.New("no such sheet")

// Book is the in-memory workbook. It is the one piece of state every
// component reads from and writes back to.
type Book struct {
	Events      []model.Event
	Assumptions model.RawAssumptions
	Funnel      []model.FunnelRecord
	Ads         []model.AdsRecord
	Agenda      []model.AgendaEntry
	Monthly     []model.MonthlySummary

	// Summary replaces the Summary sheet on save when set.
	Summary *model.AnnualSummary

	// Locale selects the headers written on save.
	Locale Locale

	// extra holds sheets this package does not model, written back verbatim.
	extra      map[string][][]string
	extraOrder []string
}

// New returns an empty book.
func New(locale Locale) *Book {
	if locale == "" {
		locale = LocaleES
	}
	return &Book{Locale: locale}
}

// Notes returns the hand-entered monthly columns (new reviews) from the
// Monthly sheet.
func (b *Book) Notes() []model.MonthlyNote {
	notes := make([]model.MonthlyNote, 0, len(b.Monthly))
	for _, m := range b.Monthly {
		notes = append(notes, model.MonthlyNote{Month: m.Month, NewReviews: m.NewReviews})
	}
	return notes
}

// ExtraSheets lists the names of preserved sheets this package does not model.
func (b *Book) ExtraSheets() []string {
	return append([]string(nil), b.extraOrder...)
}

// Warning records a cell that could not be read and was defaulted.
type Warning struct {
	Sheet  string
	Row    int // 1-based, as shown by spreadsheet programs
	Column string
	Value  string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s row %d, %s: %q %s", w.Sheet, w.Row, w.Column, w.Value, w.Reason)
}

type loadOptions struct {
	defaultYear int
	locale      Locale
}

// Option configures Load.
type Option func(*loadOptions)

// WithDefaultYear sets the year assumed for month labels without one ("Mar").
func WithDefaultYear(year int) Option {
	return func(o *loadOptions) { o.defaultYear = year }
}

// WithLocale sets the header locale the loaded book will save with.
func WithLocale(l Locale) Option {
	return func(o *loadOptions) { o.locale = l }
}

// Load reads the workbook at path. Missing sheets yield empty tables and
// unreadable cells yield defaults plus a Warning; only I/O and container
// errors are returned.
func Load(path string, opts ...Option) (*Book, []Warning, error) {
	o := loadOptions{defaultYear: time.Now().Year(), locale: LocaleES}
	for _, opt := range opts {
		opt(&o)
	}

	sheets, order, err := readSheets(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading workbook %s: %w", path, err)
	}

	b := New(o.locale)
	d := &decoder{year: o.defaultYear}

	b.Events = d.events(sheets[SheetEvents])
	b.Assumptions = d.assumptions(sheets[SheetAssumptions])
	b.Funnel = d.funnel(sheets[SheetFunnel])
	b.Ads = d.ads(sheets[SheetAds])
	b.Agenda = d.agenda(sheets[SheetAgenda])
	b.Monthly = d.monthly(sheets[SheetMonthly])

	known := make(map[string]bool, len(sheetOrder))
	for _, s := range sheetOrder {
		known[s] = true
	}
	for _, name := range order {
		if known[name] && name != SheetSummary {
			continue
		}
		if b.extra == nil {
			b.extra = make(map[string][][]string)
		}
		b.extra[name] = sheets[name]
		if name != SheetSummary {
			b.extraOrder = append(b.extraOrder, name)
		}
	}

	return b, d.warnings, nil
}

// Save writes every table of b to path, replacing the file. The workbook is
// written to a temporary file first so a failed save leaves the original intact.
func Save(path string, b *Book) error {
	if isLegacyXLS(path) {
		return fmt.Errorf("saving %s: %w", path, ErrReadOnlyFormat)
	}
	if err := writeSheets(path, b.sheets()); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

// sheets encodes b in save order.
func (b *Book) sheets() []sheetData {
	e := encoder{locale: b.Locale}
	if e.locale == "" {
		e.locale = LocaleES
	}

	sheets := []sheetData{
		{SheetAssumptions, e.assumptions(b.Assumptions)},
		{SheetMonthly, e.monthly(b.Monthly)},
		{SheetAds, e.ads(b.Ads)},
		{SheetFunnel, e.funnel(b.Funnel)},
		{SheetEvents, e.events(b.Events)},
	}
	switch {
	case b.Summary != nil:
		sheets = append(sheets, sheetData{SheetSummary, e.summary(*b.Summary)})
	case b.extra[SheetSummary] != nil:
		sheets = append(sheets, sheetData{SheetSummary, stringRows(b.extra[SheetSummary])})
	}
	sheets = append(sheets, sheetData{SheetAgenda, e.agenda(b.Agenda)})
	for _, name := range b.extraOrder {
		sheets = append(sheets, sheetData{name, stringRows(b.extra[name])})
	}
	return sheets
}

// SheetNames lists the sheets a save of b would write, in order.
func (b *Book) SheetNames() []string {
	sheets := b.sheets()
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.name
	}
	return names
}

// SheetRows returns the rows of one sheet as they would be saved, header
// first. Names are matched case-insensitively.
func (b *Book) SheetRows(name string) (string, [][]any, error) {
	for _, s := range b.sheets() {
		if strings.EqualFold(s.name, name) {
			return s.name, s.rows, nil
		}
	}
	return "", nil, fmt.Errorf("sheet %q: %w", name, ErrNoSheet)
}

// ExportSheet writes a single-sheet .xlsx holding the named sheet of b.
func ExportSheet(w io.Writer, b *Book, name string) error {
	name, rows, err := b.SheetRows(name)
	if err != nil {
		return err
	}
	f, err := buildFile([]sheetData{{name, rows}})
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = f.WriteTo(w)
	return err
}
