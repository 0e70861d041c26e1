package workbook

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Locale selects the header set written on save. Both sets are accepted
// when loading.
type Locale string

const (
	LocaleES Locale = "es"
	LocaleEN Locale = "en"
)

// column describes one field of a sheet: its key, the headers written per
// locale and any additional spellings accepted on load.
type column struct {
	key     string
	en      string
	es      string
	aliases []string
}

func (c column) header(l Locale) string {
	if l == LocaleEN {
		return c.en
	}
	return c.es
}

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// normalizeHeader folds case, accents and punctuation so "Dirección",
// "direccion" and "DIRECCION " compare equal.
func normalizeHeader(header string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, header)
	if err != nil {
		s = header
	}
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// headerKeys returns every normalised spelling that should match c.
func (c column) headerKeys() []string {
	names := append([]string{c.key, c.en, c.es}, c.aliases...)
	var keys []string
	seen := make(map[string]bool)
	for _, n := range names {
		for _, v := range []string{n, parenthetical.ReplaceAllString(n, "")} {
			k := normalizeHeader(v)
			if k != "" && !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// headerIndex maps column keys to their position in header. Exact matches
// win over matches with the parenthetical unit stripped.
func headerIndex(header []string, cols []column) map[string]int {
	byName := make(map[string]int, len(header))
	stripped := make(map[string]int, len(header))
	for i, h := range header {
		if k := normalizeHeader(h); k != "" {
			if _, dup := byName[k]; !dup {
				byName[k] = i
			}
		}
		if k := normalizeHeader(parenthetical.ReplaceAllString(h, "")); k != "" {
			if _, dup := stripped[k]; !dup {
				stripped[k] = i
			}
		}
	}

	idx := make(map[string]int, len(cols))
	for _, c := range cols {
		keys := c.headerKeys()
		found := false
		for _, k := range keys {
			if i, ok := byName[k]; ok {
				idx[c.key] = i
				found = true
				break
			}
		}
		if found {
			continue
		}
		for _, k := range keys {
			if i, ok := stripped[k]; ok {
				idx[c.key] = i
				break
			}
		}
	}
	return idx
}

func headers(cols []column, l Locale) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.header(l)
	}
	return out
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var eventColumns = []column{
	{key: "id", en: "id", es: "ID"},
	{key: "date", en: "date", es: "Fecha"},
	{key: "start_time", en: "start_time", es: "Hora", aliases: []string{"time", "hora inicio"}},
	{key: "end_time", en: "end_time", es: "Hora fin"},
	{key: "client_name", en: "client_name", es: "Nombre", aliases: []string{"name", "cliente"}},
	{key: "address", en: "address", es: "Dirección"},
	{key: "phone", en: "phone", es: "Teléfono", aliases: []string{"telefono", "tel"}},
	{key: "zone", en: "zone", es: "Colonia/Zona", aliases: []string{"colonia", "zona"}},
	{key: "package", en: "package", es: "Paquete"},
	{key: "price", en: "price", es: "Precio (MXN)"},
	{key: "pizza_addon", en: "pizza_addon", es: "Add-on Pizza (Sí/No)", aliases: []string{"pizza"}},
	{key: "pizza_margin", en: "pizza_margin", es: "Margen Pizza (MXN)"},
	{key: "retro_exterior", en: "retro_exterior", es: "Retro exterior (Sí/No)", aliases: []string{"retro"}},
	{key: "variable_cost", en: "variable_cost", es: "Costo variable (MXN)"},
	{key: "notes", en: "notes", es: "Notas"},
	{key: "confirmed", en: "confirmed", es: "Estatus", aliases: []string{"status"}},
}

var assumptionColumns = []column{
	{key: "variable", en: "variable", es: "Variable", aliases: []string{"key", "name"}},
	{key: "value", en: "value", es: "Valor"},
}

// assumptionKeys are the recognised Variable names of the Assumptions sheet.
var assumptionKeys = []column{
	{key: "average_price", en: "average_price", es: "Precio promedio (MXN)", aliases: []string{"Precio promedio por evento (MXN)", "ticket promedio"}},
	{key: "default_variable_cost", en: "default_variable_cost", es: "Costo variable por evento (MXN)", aliases: []string{"costo variable"}},
	{key: "monthly_fixed_costs", en: "monthly_fixed_costs", es: "Gastos fijos mensuales (MXN)", aliases: []string{"gastos fijos"}},
	{key: "target_bookings", en: "target_bookings", es: "Meta de reservas (#)", aliases: []string{"meta reservas", "meta mensual de reservas"}},
}

var funnelColumns = []column{
	{key: "month", en: "month", es: "Mes"},
	{key: "messages", en: "messages", es: "Mensajes"},
	{key: "appointments_offered", en: "appointments_offered", es: "Citas ofrecidas"},
	{key: "bookings_confirmed", en: "bookings_confirmed", es: "Reservas confirmadas"},
}

var adsColumns = []column{
	{key: "month", en: "month", es: "Mes"},
	{key: "spend", en: "spend", es: "Gasto Ads (MXN)", aliases: []string{"gasto"}},
	{key: "impressions", en: "impressions", es: "Impresiones"},
	{key: "clicks", en: "clicks", es: "Clics", aliases: []string{"clicks"}},
	{key: "messages", en: "messages", es: "Mensajes"},
}

var agendaColumns = []column{
	{key: "id", en: "id", es: "ID"},
	{key: "name", en: "name", es: "Nombre"},
	{key: "address", en: "address", es: "Dirección"},
	{key: "date", en: "date", es: "Fecha"},
	{key: "time", en: "time", es: "Hora"},
	{key: "cost", en: "cost", es: "Costo (MXN)"},
}

var monthlyColumns = []column{
	{key: "month", en: "month", es: "Mes"},
	{key: "event_count", en: "event_count", es: "Eventos"},
	{key: "average_price", en: "average_price", es: "Precio promedio (MXN)"},
	{key: "revenue", en: "revenue", es: "Ingresos (MXN)"},
	{key: "variable_cost_total", en: "variable_cost_total", es: "Costo variable (MXN)"},
	{key: "fixed_costs", en: "fixed_costs", es: "Gastos fijos (MXN)"},
	{key: "pizza_addons", en: "pizza_addons", es: "Add-ons Pizza (#)"},
	{key: "pizza_margin", en: "pizza_margin", es: "Margen Pizza (MXN)"},
	{key: "net_profit", en: "net_profit", es: "Utilidad neta (MXN)"},
	{key: "arpu", en: "arpu", es: "ARPU real (MXN)"},
	{key: "booking_ratio", en: "booking_ratio_pct", es: "Reservas/Meta (%)"},
	{key: "retro_adoption", en: "retro_adoption_pct", es: "Adopción Retro (%)"},
	{key: "new_reviews", en: "new_reviews", es: "Reseñas nuevas (#)"},
}
