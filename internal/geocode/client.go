// Package geocode turns coordinates into street addresses using a
// Nominatim-compatible reverse geocoding service.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public OpenStreetMap Nominatim instance.
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "gbdash/1.0 (event dashboard)"
	requestTimeout   = 8 * time.Second
	maxBodySize      = 1 << 20 // 1 MB
)

var (
	// ErrRateLimited indicates the service asked us to slow down.
	ErrRateLimited = errors.New("geocode: rate limited")
	// ErrNotFound indicates there is no address near the coordinates.
	ErrNotFound = errors.New("geocode: no address found")
	// ErrInvalidCoordinates rejects latitudes outside ±90 or longitudes outside ±180.
	ErrInvalidCoordinates = errors.New("geocode: invalid coordinates")
)

// Client performs reverse geocoding lookups.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a client for baseURL. Empty arguments select the
// public Nominatim instance and the default user agent.
func NewClient(baseURL, userAgent string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{},
	}
}

// Reverse looks up the address closest to lat/lon.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) (Place, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Place{}, fmt.Errorf("%w: %v,%v", ErrInvalidCoordinates, lat, lon)
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("zoom", "18")
	q.Set("addressdetails", "1")

	body, err := c.get(ctx, "/reverse?"+q.Encode())
	if err != nil {
		return Place{}, err
	}

	var raw reverseResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Place{}, fmt.Errorf("geocode: parsing response: %w", err)
	}
	if raw.Error != "" || raw.DisplayName == "" {
		return Place{}, ErrNotFound
	}
	return raw.place(), nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("geocode: reading response: %w", err)
	}
	return body, nil
}

// MapsLink returns a Google Maps search link for an address, or "" when the
// address is blank.
func MapsLink(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	return "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(address)
}

// ParseLatLon reads "lat,lon" as typed or pasted from a map.
func ParseLatLon(s string) (lat, lon float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: want \"lat,lon\", got %q", ErrInvalidCoordinates, s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: latitude %q", ErrInvalidCoordinates, parts[0])
	}
	lon, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: longitude %q", ErrInvalidCoordinates, parts[1])
	}
	return lat, lon, nil
}
