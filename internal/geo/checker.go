// Package geo decides whether a free-text location lies within the business's
// service radius. A static keyword/postal-prefix tier answers cheaply; an
// optional geocoding tier computes the precise distance, backed by a cached
// Nominatim lookup. Network failure always degrades to the static tier, and
// absence of information never excludes a lead.
package geo

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

var postalCodePattern = regexp.MustCompile(`\b(\d{5})\b`)

// coordinateSource resolves a place token to coordinates.
type coordinateSource interface {
	Lookup(ctx context.Context, query string) (lat, lon float64, err error)
}

// Checker is the tiered service-area filter. Safe for concurrent use.
type Checker struct {
	cfg      config.GeoConfig
	inside   []string
	outside  []string
	geocoder coordinateSource
	cache    *coordCache
	log      logger.Logger
}

// NewChecker builds the checker. The geocoding tier is only active when
// enabled in the configuration.
func NewChecker(cfg config.GeoConfig, log logger.Logger) (*Checker, error) {
	c := &Checker{
		cfg:     cfg,
		inside:  lowerAll(cfg.InsideKeywords),
		outside: lowerAll(cfg.OutsideKeywords),
		log:     log,
	}

	if cfg.GeocodingEnabled {
		cache, err := newCoordCache(cfg.CachePath, cfg.CacheExpiryDays, log)
		if err != nil {
			return nil, fmt.Errorf("init geo cache: %w", err)
		}
		c.cache = cache
		c.geocoder = NewGeocoder(cfg, log)
	}

	log.Info("geo checker initialized",
		logger.Float64("radius_km", cfg.RadiusKM),
		logger.Bool("geocoding", cfg.GeocodingEnabled))

	return c, nil
}

// Check reports whether the location lies within the service area.
// distanceKM is negative when no distance was computed. reason is populated
// only on rejection.
func (c *Checker) Check(ctx context.Context, location string) (bool, float64, string) {
	location = strings.TrimSpace(location)
	if location == "" {
		// No geography to violate.
		return true, -1, ""
	}

	loc := strings.ToLower(location)

	for _, kw := range c.inside {
		if strings.Contains(loc, kw) {
			return true, -1, ""
		}
	}
	for _, kw := range c.outside {
		if strings.Contains(loc, kw) {
			return false, -1, "too far: " + kw
		}
	}

	if c.geocoder != nil {
		if ok, dist, reason, resolved := c.checkDistance(ctx, location); resolved {
			return ok, dist, reason
		}
	}

	// Static fallback: postal-code prefix heuristic.
	if code := extractPostalCode(location); code != "" {
		for _, prefix := range c.cfg.PostalPrefixes {
			if strings.HasPrefix(code, prefix) {
				return true, -1, ""
			}
		}
		return false, -1, "too far: postal code " + code
	}

	// Nothing resolved. A legitimate lead must not be discarded for lack
	// of information.
	return true, -1, ""
}

// checkDistance geocodes the location and compares the haversine distance to
// the configured radius. resolved is false when no coordinates could be
// obtained, in which case the caller falls back to the static tier.
func (c *Checker) checkDistance(ctx context.Context, location string) (ok bool, dist float64, reason string, resolved bool) {
	token := extractToken(location)
	if token == "" {
		return false, -1, "", false
	}

	lat, lon, found := c.cache.get(token)
	if !found {
		var err error
		lat, lon, err = c.geocoder.Lookup(ctx, token)
		if err != nil {
			c.log.Warn("geocoding failed, falling back to postal prefix",
				logger.String("token", token), logger.Error(err))
			return false, -1, "", false
		}
		c.cache.put(token, lat, lon)
	}

	dist = HaversineKM(c.cfg.OriginLat, c.cfg.OriginLon, lat, lon)
	if dist <= c.cfg.RadiusKM {
		return true, dist, "", true
	}
	return false, dist,
		fmt.Sprintf("too far: %.1f km (max %.0f km)", dist, c.cfg.RadiusKM), true
}

// Close releases the coordinate cache.
func (c *Checker) Close() error {
	if c.cache != nil {
		return c.cache.close()
	}
	return nil
}

// extractToken picks the best geocodable token from a location string:
// a 5-digit postal code when present, otherwise the first capitalized
// comma-separated segment.
func extractToken(location string) string {
	if code := extractPostalCode(location); code != "" {
		return code
	}

	cleaned := postalCodePattern.ReplaceAllString(location, "")
	for _, part := range strings.Split(cleaned, ",") {
		part = strings.TrimSpace(part)
		if len([]rune(part)) < 3 {
			continue
		}
		if unicode.IsUpper([]rune(part)[0]) {
			return part
		}
	}
	return ""
}

func extractPostalCode(location string) string {
	return postalCodePattern.FindString(location)
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
