package eventlog

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/theirongolddev/gbdash/internal/model"
)

var csvHeader = []string{
	"id", "date", "start_time", "end_time", "client_name", "address", "phone", "zone",
	"package", "price", "pizza_addon", "pizza_margin", "retro_exterior",
	"variable_cost", "variable_cost_resolved", "status", "notes",
}

// ToCSV writes events as comma-separated values with a header row. An empty
// variable_cost means the assumptions default applies; variable_cost_resolved
// always holds the figure the metrics use.
func ToCSV(events []model.Event, a model.Assumptions) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, e := range events {
		date := ""
		if !e.Date.IsZero() {
			date = e.Date.Format("2006-01-02")
		}
		override := ""
		if e.VariableCost != nil {
			override = money(*e.VariableCost)
		}
		record := []string{
			strconv.Itoa(e.ID),
			date,
			e.StartTime,
			e.EndTime,
			e.ClientName,
			e.Address,
			e.Phone,
			e.Zone,
			e.Package,
			money(e.Price),
			strconv.FormatBool(e.PizzaAddon),
			money(e.PizzaMargin),
			strconv.FormatBool(e.RetroExterior),
			override,
			money(e.ResolvedVariableCost(a)),
			e.Status(),
			e.Notes,
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

func money(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
