package agenda

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/theirongolddev/gbdash/internal/model"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// csvHeader is the column order of exported CSV files.
var csvHeader = []string{"id", "name", "address", "date", "time", "cost"}

// ToCSV writes entries as comma-separated values with a header row.
func ToCSV(entries []model.AgendaEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		date := ""
		if !e.Date.IsZero() {
			date = e.Date.Format("2006-01-02")
		}
		record := []string{
			e.ID,
			e.Name,
			e.Address,
			date,
			e.Time,
			strconv.FormatFloat(e.Cost, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromCSV reads entries written by ToCSV. Columns are matched by header name
// in any order; rows without an id get a fresh one.
func FromCSV(r io.Reader) ([]model.AgendaEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	if _, ok := idx["name"]; !ok {
		return nil, fmt.Errorf("csv header %v has no name column", header)
	}

	// Text cells are kept verbatim; only the parsed columns are trimmed.
	cell := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	get := func(rec []string, col string) string {
		return strings.TrimSpace(cell(rec, col))
	}

	var out []model.AgendaEntry
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		e := model.AgendaEntry{
			ID:      get(rec, "id"),
			Name:    cell(rec, "name"),
			Address: cell(rec, "address"),
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if d, ok := workbook.ParseDate(get(rec, "date")); ok {
			e.Date = d
		} else {
			return nil, fmt.Errorf("csv line %d: invalid date %q", line, get(rec, "date"))
		}
		if c, ok := workbook.ParseClock(get(rec, "time")); ok {
			e.Time = c
		} else {
			return nil, fmt.Errorf("csv line %d: invalid time %q", line, get(rec, "time"))
		}
		if raw := get(rec, "cost"); raw != "" {
			cost, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: invalid cost %q", line, raw)
			}
			e.Cost = cost
		}
		out = append(out, e)
	}
	return out, nil
}
