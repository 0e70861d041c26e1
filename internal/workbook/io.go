package workbook

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxLegacyRows bounds how many rows are read from a legacy .xls sheet.
const maxLegacyRows = 100000

type sheetData struct {
	name string
	rows [][]any
}

func stringRows(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = make([]any, len(row))
		for j, v := range row {
			out[i][j] = v
		}
	}
	return out
}

func isLegacyXLS(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xls")
}

// readSheets returns every sheet's rows keyed by name, plus the sheet order.
func readSheets(path string) (map[string][][]string, []string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, err
	}
	if isLegacyXLS(path) {
		return readLegacySheets(path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	order := f.GetSheetList()
	sheets := make(map[string][][]string, len(order))
	for _, name := range order {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		sheets[name] = rows
	}
	return sheets, order, nil
}

func readLegacySheets(path string) (map[string][][]string, []string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, nil, fmt.Errorf("no worksheet found")
	}

	sheets := make(map[string][][]string, wb.NumSheets())
	var order []string
	for i := 0; i < wb.NumSheets(); i++ {
		ws := wb.GetSheet(i)
		if ws == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(ws.MaxRow) && r < maxLegacyRows; r++ {
			row := ws.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells[c] = row.Col(c)
			}
			rows = append(rows, cells)
		}
		sheets[ws.Name] = rows
		order = append(order, ws.Name)
	}
	return sheets, order, nil
}

// writeSheets builds a new workbook from sheets and atomically replaces path.
func writeSheets(path string, sheets []sheetData) error {
	f, err := buildFile(sheets)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".gbdash-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := f.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	return os.Rename(tmpName, path)
}

// buildFile lays sheets out in a new in-memory workbook.
func buildFile(sheets []sheetData) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				_ = f.Close()
				return nil, err
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("sheet %s: %w", s.name, err)
		}
		for r, row := range s.rows {
			if len(row) == 0 {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				_ = f.Close()
				return nil, err
			}
			values := row
			if err := f.SetSheetRow(s.name, cell, &values); err != nil {
				_ = f.Close()
				return nil, fmt.Errorf("sheet %s row %d: %w", s.name, r+1, err)
			}
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}
