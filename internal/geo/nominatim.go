package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	nominatimSearchURL = "https://nominatim.openstreetmap.org/search"
	defaultHTTPTimeout = 5 * time.Second
)

// NominatimGeocoder resolves addresses against the OpenStreetMap Nominatim
// search API.
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a geocoder against the public Nominatim API.
// The user agent identifies the caller as required by the Nominatim usage
// policy.
func NewNominatimGeocoder(userAgent string) *NominatimGeocoder {
	return NewNominatimGeocoderWithOptions(userAgent, nominatimSearchURL, nil)
}

// NewNominatimGeocoderWithOptions allows overriding the base URL and HTTP
// client (used for tests).
func NewNominatimGeocoderWithOptions(userAgent, baseURL string, httpClient *http.Client) *NominatimGeocoder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = nominatimSearchURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &NominatimGeocoder{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves a free-text address. An empty result set yields
// (nil, nil): the address is unknown to the service, which is not a
// transport failure.
func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return nil, fmt.Errorf("address is required")
	}

	params := url.Values{
		"q":      []string{trimmed},
		"format": []string{"json"},
		"limit":  []string{"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to decode geocode response: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude in geocode response: %w", err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude in geocode response: %w", err)
	}

	return &Coordinates{Latitude: lat, Longitude: lon}, nil
}
