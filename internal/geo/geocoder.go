package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

// Geocoder resolves place names and postal codes to coordinates via the
// Nominatim search API. Requests are spaced process-wide to respect the
// service's usage policy (at most one per second plus margin).
type Geocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	log       logger.Logger
}

// nominatimResult is one entry of the Nominatim search response.
// Coordinates are returned as strings.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NewGeocoder builds a Nominatim client from configuration.
func NewGeocoder(cfg config.GeoConfig, log logger.Logger) *Geocoder {
	return &Geocoder{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		limiter:   rate.NewLimiter(rate.Every(cfg.RequestSpacing), 1),
		log:       log,
	}
}

// Lookup resolves a query to latitude/longitude. It blocks until the
// rate limiter grants a slot or the context is done.
func (g *Geocoder) Lookup(ctx context.Context, query string) (lat, lon float64, err error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return 0, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "de")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)

	g.log.Debug("geocoding query", logger.String("query", query))

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode %q: unexpected status %d", query, resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return 0, 0, fmt.Errorf("decode geocode response for %q: %w", query, err)
	}
	if len(results) == 0 {
		return 0, 0, fmt.Errorf("geocode %q: no results", query)
	}

	lat, err = strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse latitude %q: %w", results[0].Lat, err)
	}
	lon, err = strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse longitude %q: %w", results[0].Lon, err)
	}

	return lat, lon, nil
}
