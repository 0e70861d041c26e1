package geocode

import (
	"encoding/json"
	"strconv"
	"strings"
)

// reverseResponse is the subset of a Nominatim jsonv2 reverse response we use.
type reverseResponse struct {
	DisplayName string            `json:"display_name"`
	Lat         json.RawMessage   `json:"lat"`
	Lon         json.RawMessage   `json:"lon"`
	Address     map[string]string `json:"address"`
	Error       string            `json:"error"`
}

// Place is a reverse-geocoded location.
type Place struct {
	DisplayName string
	Lat         float64
	Lon         float64
	Road        string
	HouseNumber string
	Suburb      string
	City        string
	Postcode    string
}

// Short joins street, number and neighbourhood, falling back to the display
// name when the response has no address details.
func (p Place) Short() string {
	street := p.Road
	if street != "" && p.HouseNumber != "" {
		street += " " + p.HouseNumber
	}
	parts := make([]string, 0, 3)
	for _, s := range []string{street, p.Suburb, p.City} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return p.DisplayName
	}
	return strings.Join(parts, ", ")
}

// parseCoord accepts a coordinate encoded as a JSON number or string.
func parseCoord(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
	}
	return 0
}

func (r reverseResponse) place() Place {
	return Place{
		DisplayName: r.DisplayName,
		Lat:         parseCoord(r.Lat),
		Lon:         parseCoord(r.Lon),
		Road:        r.Address["road"],
		HouseNumber: r.Address["house_number"],
		Suburb:      firstOf(r.Address, "suburb", "neighbourhood", "quarter"),
		City:        firstOf(r.Address, "city", "town", "village", "municipality"),
		Postcode:    r.Address["postcode"],
	}
}

func firstOf(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
