package workbook

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/gbdash/internal/model"
)

// decoder turns raw sheet rows into model records, collecting warnings for
// cells it had to default.
type decoder struct {
	year     int
	warnings []Warning
}

type sheetReader struct {
	d      *decoder
	sheet  string
	header []string
	idx    map[string]int
}

// open splits rows into a reader over the header and the data rows.
func (d *decoder) open(sheet string, rows [][]string, cols []column) (*sheetReader, [][]string) {
	r := &sheetReader{d: d, sheet: sheet, idx: map[string]int{}}
	if len(rows) == 0 {
		return r, nil
	}
	r.header = rows[0]
	r.idx = headerIndex(rows[0], cols)
	return r, rows[1:]
}

func (r *sheetReader) has(key string) bool {
	_, ok := r.idx[key]
	return ok
}

func (r *sheetReader) str(row []string, key string) string {
	i, ok := r.idx[key]
	if !ok {
		return ""
	}
	return cellValue(row, i)
}

func (r *sheetReader) warn(line int, key, value, reason string) {
	col := key
	if i, ok := r.idx[key]; ok && i < len(r.header) {
		col = r.header[i]
	}
	r.d.warnings = append(r.d.warnings, Warning{
		Sheet: r.sheet, Row: line, Column: col, Value: value, Reason: reason,
	})
}

// number coerces malformed values to zero with a warning.
func (r *sheetReader) number(line int, row []string, key string) float64 {
	raw := r.str(row, key)
	v, _, ok := parseNumber(raw)
	if !ok {
		r.warn(line, key, raw, "is not a number, using 0")
		return 0
	}
	return v
}

// optNumber returns nil for empty cells. Malformed values are treated as
// absent so the default-resolution step applies.
func (r *sheetReader) optNumber(line int, row []string, key string) *float64 {
	raw := r.str(row, key)
	v, present, ok := parseNumber(raw)
	if !ok {
		r.warn(line, key, raw, "is not a number, treating as empty")
		return nil
	}
	if !present {
		return nil
	}
	return &v
}

func (r *sheetReader) count(line int, row []string, key string) int {
	return int(math.Round(r.number(line, row, key)))
}

func (r *sheetReader) flag(line int, row []string, key string) bool {
	raw := r.str(row, key)
	v, ok := parseFlag(raw)
	if !ok {
		r.warn(line, key, raw, "is not yes/no, using no")
	}
	return v
}

func (r *sheetReader) date(line int, row []string, key string) time.Time {
	raw := r.str(row, key)
	t, ok := parseDate(raw)
	if !ok {
		r.warn(line, key, raw, "is not a date, leaving empty")
	}
	return t
}

func (r *sheetReader) clock(line int, row []string, key string) string {
	raw := r.str(row, key)
	c, ok := parseClock(raw)
	if !ok {
		r.warn(line, key, raw, "is not a time of day, leaving empty")
	}
	return c
}

func (r *sheetReader) month(line int, row []string, key string) (model.Month, bool) {
	raw := r.str(row, key)
	m, ok := model.ParseMonth(raw, r.d.year)
	if !ok {
		r.warn(line, key, raw, "is not a month, skipping row")
	}
	return m, ok
}

func (d *decoder) events(rows [][]string) []model.Event {
	r, data := d.open(SheetEvents, rows, eventColumns)
	var out []model.Event
	for i, row := range data {
		if isBlankRow(row) {
			continue
		}
		line := i + 2
		e := model.Event{
			Date:          r.date(line, row, "date"),
			StartTime:     r.clock(line, row, "start_time"),
			EndTime:       r.clock(line, row, "end_time"),
			ClientName:    r.str(row, "client_name"),
			Address:       r.str(row, "address"),
			Phone:         r.str(row, "phone"),
			Zone:          r.str(row, "zone"),
			Package:       r.str(row, "package"),
			Price:         r.number(line, row, "price"),
			PizzaAddon:    r.flag(line, row, "pizza_addon"),
			PizzaMargin:   r.number(line, row, "pizza_margin"),
			RetroExterior: r.flag(line, row, "retro_exterior"),
			VariableCost:  r.optNumber(line, row, "variable_cost"),
			Confirmed:     r.flag(line, row, "confirmed"),
			Notes:         r.str(row, "notes"),
		}
		if id := r.optNumber(line, row, "id"); id != nil {
			e.ID = int(math.Round(*id))
		}
		out = append(out, e)
	}
	model.NormalizeEventIDs(out)
	return out
}

func (d *decoder) assumptions(rows [][]string) model.RawAssumptions {
	r, data := d.open(SheetAssumptions, rows, assumptionColumns)
	var a model.RawAssumptions
	if !r.has("variable") || !r.has("value") {
		return a
	}
	for i, row := range data {
		if isBlankRow(row) {
			continue
		}
		line := i + 2
		name := r.str(row, "variable")
		switch matchKey(name, assumptionKeys) {
		case "average_price":
			a.AveragePrice = r.optNumber(line, row, "value")
		case "default_variable_cost":
			a.DefaultVariableCost = r.optNumber(line, row, "value")
		case "monthly_fixed_costs":
			a.MonthlyFixedCosts = r.optNumber(line, row, "value")
		case "target_bookings":
			a.TargetBookings = r.optNumber(line, row, "value")
		default:
			a.Extra = append(a.Extra, model.KeyValue{Key: name, Value: r.str(row, "value")})
		}
	}
	return a
}

// matchKey returns the key of the column whose spellings include name.
func matchKey(name string, cols []column) string {
	n := normalizeHeader(name)
	stripped := normalizeHeader(parenthetical.ReplaceAllString(name, ""))
	for _, c := range cols {
		for _, k := range c.headerKeys() {
			if k == n {
				return c.key
			}
		}
	}
	for _, c := range cols {
		for _, k := range c.headerKeys() {
			if k == stripped {
				return c.key
			}
		}
	}
	return ""
}

func (d *decoder) funnel(rows [][]string) []model.FunnelRecord {
	r, data := d.open(SheetFunnel, rows, funnelColumns)
	var out []model.FunnelRecord
	for i, row := range data {
		if isBlankRow(row) {
			continue
		}
		line := i + 2
		m, ok := r.month(line, row, "month")
		if !ok {
			continue
		}
		out = append(out, model.FunnelRecord{
			Month:               m,
			Messages:            r.number(line, row, "messages"),
			AppointmentsOffered: r.number(line, row, "appointments_offered"),
			BookingsConfirmed:   r.number(line, row, "bookings_confirmed"),
		})
	}
	return out
}

func (d *decoder) ads(rows [][]string) []model.AdsRecord {
	r, data := d.open(SheetAds, rows, adsColumns)
	var out []model.AdsRecord
	for i, row := range data {
		if isBlankRow(row) {
			continue
		}
		line := i + 2
		m, ok := r.month(line, row, "month")
		if !ok {
			continue
		}
		out = append(out, model.AdsRecord{
			Month:       m,
			Spend:       r.number(line, row, "spend"),
			Impressions: r.number(line, row, "impressions"),
			Clicks:      r.number(line, row, "clicks"),
			Messages:    r.number(line, row, "messages"),
		})
	}
	return out
}

func (d *decoder) agenda(rows [][]string) []model.AgendaEntry {
	r, data := d.open(SheetAgenda, rows, agendaColumns)
	var out []model.AgendaEntry
	for i, row := range data {
		if isBlankRow(row) {
			continue
		}
		line := i + 2
		e := model.AgendaEntry{
			ID:      r.str(row, "id"),
			Name:    r.str(row, "name"),
			Address: r.str(row, "address"),
			Date:    r.date(line, row, "date"),
			Time:    r.clock(line, row, "time"),
			Cost:    r.number(line, row, "cost"),
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		out = append(out, e)
	}
	return out
}

func (d *decoder) monthly(rows [][]string) []model.MonthlySummary {
	r, data := d.open(SheetMonthly, rows, monthlyColumns)
	var out []model.MonthlySummary
	for i, row := range data {
		if isBlankRow(row) {
			continue
		}
		line := i + 2
		m, ok := r.month(line, row, "month")
		if !ok {
			continue
		}
		out = append(out, model.MonthlySummary{
			Month:             m,
			EventCount:        r.count(line, row, "event_count"),
			AveragePrice:      r.optNumber(line, row, "average_price"),
			Revenue:           r.number(line, row, "revenue"),
			VariableCostTotal: r.number(line, row, "variable_cost_total"),
			FixedCosts:        r.number(line, row, "fixed_costs"),
			PizzaAddons:       r.count(line, row, "pizza_addons"),
			PizzaMargin:       r.number(line, row, "pizza_margin"),
			NetProfit:         r.number(line, row, "net_profit"),
			ARPU:              r.optNumber(line, row, "arpu"),
			BookingRatio:      fromPercent(r.optNumber(line, row, "booking_ratio")),
			RetroAdoption:     fromPercent(r.optNumber(line, row, "retro_adoption")),
			NewReviews:        r.number(line, row, "new_reviews"),
		})
	}
	return out
}

func fromPercent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v / 100
	return &f
}

func toPercent(v *float64) any {
	if v == nil {
		return ""
	}
	return math.Round(*v*10000) / 100
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

// encoder renders model records as sheet rows in one locale.
type encoder struct {
	locale Locale
}

func (e encoder) header(cols []column) []any {
	h := headers(cols, e.locale)
	out := make([]any, len(h))
	for i, v := range h {
		out[i] = v
	}
	return out
}

func (e encoder) yesNo(v bool) string {
	switch {
	case e.locale == LocaleEN && v:
		return "yes"
	case e.locale == LocaleEN:
		return "no"
	case v:
		return "Sí"
	default:
		return "No"
	}
}

func (e encoder) status(confirmed bool) string {
	if e.locale == LocaleEN {
		return e.yesNo(confirmed)
	}
	if confirmed {
		return model.StatusConfirmed
	}
	return model.StatusPending
}

func (e encoder) events(events []model.Event) [][]any {
	rows := [][]any{e.header(eventColumns)}
	for _, ev := range events {
		rows = append(rows, []any{
			ev.ID,
			formatDate(ev.Date),
			ev.StartTime,
			ev.EndTime,
			ev.ClientName,
			ev.Address,
			ev.Phone,
			ev.Zone,
			ev.Package,
			ev.Price,
			e.yesNo(ev.PizzaAddon),
			ev.PizzaMargin,
			e.yesNo(ev.RetroExterior),
			optional(ev.VariableCost),
			ev.Notes,
			e.status(ev.Confirmed),
		})
	}
	return rows
}

func (e encoder) assumptions(a model.RawAssumptions) [][]any {
	rows := [][]any{e.header(assumptionColumns)}
	values := map[string]*float64{
		"average_price":         a.AveragePrice,
		"default_variable_cost": a.DefaultVariableCost,
		"monthly_fixed_costs":   a.MonthlyFixedCosts,
		"target_bookings":       a.TargetBookings,
	}
	for _, c := range assumptionKeys {
		if v := values[c.key]; v != nil {
			rows = append(rows, []any{c.header(e.locale), *v})
		}
	}
	for _, kv := range a.Extra {
		rows = append(rows, []any{kv.Key, kv.Value})
	}
	return rows
}

func (e encoder) funnel(records []model.FunnelRecord) [][]any {
	rows := [][]any{e.header(funnelColumns)}
	for _, f := range records {
		rows = append(rows, []any{e.month(f.Month), f.Messages, f.AppointmentsOffered, f.BookingsConfirmed})
	}
	return rows
}

func (e encoder) ads(records []model.AdsRecord) [][]any {
	rows := [][]any{e.header(adsColumns)}
	for _, a := range records {
		rows = append(rows, []any{e.month(a.Month), a.Spend, a.Impressions, a.Clicks, a.Messages})
	}
	return rows
}

func (e encoder) agenda(entries []model.AgendaEntry) [][]any {
	rows := [][]any{e.header(agendaColumns)}
	for _, a := range entries {
		rows = append(rows, []any{a.ID, a.Name, a.Address, formatDate(a.Date), a.Time, a.Cost})
	}
	return rows
}

func (e encoder) monthly(summaries []model.MonthlySummary) [][]any {
	rows := [][]any{e.header(monthlyColumns)}
	for _, s := range summaries {
		rows = append(rows, []any{
			e.month(s.Month),
			s.EventCount,
			optional(s.AveragePrice),
			s.Revenue,
			s.VariableCostTotal,
			s.FixedCosts,
			s.PizzaAddons,
			s.PizzaMargin,
			s.NetProfit,
			optional(s.ARPU),
			toPercent(s.BookingRatio),
			toPercent(s.RetroAdoption),
			s.NewReviews,
		})
	}
	return rows
}

func (e encoder) summary(a model.AnnualSummary) [][]any {
	label := func(en, es string) string {
		if e.locale == LocaleEN {
			return en
		}
		return es
	}
	return [][]any{
		e.header(assumptionColumns),
		{label("year", "Año"), a.Year},
		{label("months", "Meses"), a.Months},
		{label("event_count", "Eventos"), a.EventCount},
		{label("revenue", "Ingresos (MXN)"), a.Revenue},
		{label("variable_cost_total", "Costo variable (MXN)"), a.VariableCostTotal},
		{label("fixed_costs", "Gastos fijos (MXN)"), a.FixedCosts},
		{label("pizza_addons", "Add-ons Pizza (#)"), a.PizzaAddons},
		{label("pizza_margin", "Margen Pizza (MXN)"), a.PizzaMargin},
		{label("net_profit", "Utilidad neta (MXN)"), a.NetProfit},
		{label("arpu", "ARPU real (MXN)"), optional(a.ARPU)},
		{label("avg_monthly_revenue", "Ingreso mensual promedio (MXN)"), optional(a.AvgMonthlyRevenue)},
		{label("avg_monthly_net_profit", "Utilidad mensual promedio (MXN)"), optional(a.AvgMonthlyProfit)},
		{label("avg_booking_ratio_pct", "Reservas/Meta promedio (%)"), toPercent(a.AvgBookingRatio)},
		{label("new_reviews", "Reseñas nuevas (#)"), a.NewReviews},
	}
}

// month writes ISO months; the Spanish label alone would lose the year.
func (e encoder) month(m model.Month) string {
	return m.String()
}
