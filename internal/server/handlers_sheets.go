package server

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/theirongolddev/gbdash/internal/pipeline"
	"github.com/theirongolddev/gbdash/internal/workbook"
)

// SheetInfo describes one sheet of the workbook.
type SheetInfo struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

func (s *Service) handleListSheets(w http.ResponseWriter, r *http.Request) {
	var sheets []SheetInfo
	err := s.read(0, func(lr *pipeline.LoadResult) error {
		for _, name := range lr.Book.SheetNames() {
			_, rows, err := lr.Book.SheetRows(name)
			if err != nil {
				return err
			}
			sheets = append(sheets, SheetInfo{Name: name, Rows: max(len(rows)-1, 0)})
		}
		return nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sheets)
}

// handleExportSheet serves one sheet as a single-sheet .xlsx download.
// The name may carry the .xlsx extension.
func (s *Service) handleExportSheet(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(chi.URLParam(r, "name"), ".xlsx")
	var buf bytes.Buffer
	err := s.read(0, func(lr *pipeline.LoadResult) error {
		var err error
		if name, _, err = lr.Book.SheetRows(name); err != nil {
			return err
		}
		return workbook.ExportSheet(&buf, lr.Book, name)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", name+".xlsx", buf.Bytes())
}
