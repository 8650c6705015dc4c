// Package scrape collects listings from classified-ad platforms. Each
// platform implements the Scraper interface; shared fetching, politeness
// delays and result capping live here.
package scrape

import (
	"context"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

// Scraper searches one platform for listings matching a term in a region.
type Scraper interface {
	// Name identifies the platform for logging and metrics.
	Name() domain.Source
	// Search runs one query and returns the parsed listings.
	Search(ctx context.Context, term, region string) ([]domain.Listing, error)
}

// SearchResult carries the outcome of one term/region search, used for the
// scrape log and learning metrics.
type SearchResult struct {
	Platform domain.Source
	Term     string
	Listings []domain.Listing
}

// SearchAll runs every term/region combination on a scraper, caps results
// per search and deduplicates by URL hash within the batch. Individual
// search failures are logged and skipped; a platform outage must not abort
// the whole run.
func SearchAll(ctx context.Context, s Scraper, cfg config.ScraperConfig,
	terms, regions []string, log logger.Logger) []SearchResult {

	var results []SearchResult
	seen := make(map[string]bool)

	for _, term := range terms {
		perTerm := SearchResult{Platform: s.Name(), Term: term}

		for _, region := range regions {
			if ctx.Err() != nil {
				return results
			}

			log.Info("searching",
				logger.String("platform", string(s.Name())),
				logger.String("term", term),
				logger.String("region", region))

			listings, err := s.Search(ctx, term, region)
			if err != nil {
				log.Error("search failed",
					logger.String("platform", string(s.Name())),
					logger.String("term", term),
					logger.Error(err))
				continue
			}
			if len(listings) > cfg.MaxPerSearch {
				listings = listings[:cfg.MaxPerSearch]
			}

			for _, l := range listings {
				hash := l.URLHash()
				if seen[hash] {
					continue
				}
				seen[hash] = true
				perTerm.Listings = append(perTerm.Listings, l)
			}
		}

		results = append(results, perTerm)
	}

	return results
}
