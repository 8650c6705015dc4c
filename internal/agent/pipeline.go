// Package agent wires scraping, scoring, drafting, persistence and
// notification into the periodic lead-generation pipeline.
package agent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/learn"
	"github.com/Susa-Sek/se-handwerk/internal/llm"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
	"github.com/Susa-Sek/se-handwerk/internal/notify"
	"github.com/Susa-Sek/se-handwerk/internal/respond"
	"github.com/Susa-Sek/se-handwerk/internal/scrape"
	"github.com/Susa-Sek/se-handwerk/internal/store"
)

// RunSummary counts what one pipeline run produced.
type RunSummary struct {
	Found    int // listings scraped across all platforms
	Fresh    int // listings that passed the age filter and dedup
	New      int // listings newly persisted
	Relevant int // listings worth notifying the operator about
}

// Pipeline is one full scrape-score-notify cycle.
type Pipeline struct {
	cfg       *config.Config
	store     *store.Store
	scrapers  []scrape.Scraper
	scorer    *llm.Scorer
	generator *respond.Generator
	notifier  *notify.Notifier
	reporter  *learn.Reporter
	log       logger.Logger
}

// NewPipeline assembles the pipeline from its collaborators.
func NewPipeline(cfg *config.Config, st *store.Store, scrapers []scrape.Scraper,
	scorer *llm.Scorer, generator *respond.Generator, notifier *notify.Notifier,
	reporter *learn.Reporter, log logger.Logger) *Pipeline {

	return &Pipeline{
		cfg:       cfg,
		store:     st,
		scrapers:  scrapers,
		scorer:    scorer,
		generator: generator,
		notifier:  notifier,
		reporter:  reporter,
		log:       log,
	}
}

// RunOnce executes one complete cycle.
func (p *Pipeline) RunOnce(ctx context.Context) (RunSummary, error) {
	started := time.Now()
	terms := p.searchTerms()
	regions := p.regions()

	p.log.Info("pipeline run started",
		logger.Int("terms", len(terms)),
		logger.Int("regions", len(regions)),
		logger.Int("scrapers", len(p.scrapers)))

	var summary RunSummary
	for _, s := range p.scrapers {
		results := scrape.SearchAll(ctx, s, p.cfg.Scraper, terms, regions, p.log)
		for _, res := range results {
			summary.Found += len(res.Listings)
			n, err := p.processSearch(ctx, res, &summary)
			if err != nil {
				p.log.Error("processing search results failed",
					logger.String("term", res.Term), logger.Error(err))
			}

			if err := p.store.LogScrape(string(res.Platform), res.Term,
				len(res.Listings), n); err != nil {
				p.log.Warn("scrape log failed", logger.Error(err))
			}
		}
	}

	if suggestions, err := p.reporter.AfterRun(); err != nil {
		p.log.Warn("learning aggregation failed", logger.Error(err))
	} else if len(suggestions) > 0 {
		if err := p.reporter.PersistSuggestions(suggestions); err != nil {
			p.log.Warn("persisting suggestions failed", logger.Error(err))
		}
	}

	p.log.Info("pipeline run finished",
		logger.Int("found", summary.Found),
		logger.Int("fresh", summary.Fresh),
		logger.Int("new", summary.New),
		logger.Int("relevant", summary.Relevant),
		logger.Duration("took", time.Since(started)))
	return summary, nil
}

// processSearch filters, scores, persists and notifies for one search's
// listings. Returns the number of relevant leads.
func (p *Pipeline) processSearch(ctx context.Context, res scrape.SearchResult,
	summary *RunSummary) (int, error) {

	fresh, err := p.filterFresh(res.Listings)
	if err != nil {
		return 0, err
	}
	summary.Fresh += len(fresh)

	if len(fresh) == 0 {
		return 0, nil
	}

	relevant := 0
	for _, scored := range p.scorer.ScoreAll(ctx, fresh) {
		if scored.Relevant() {
			relevant++
			scored.ResponseDraft = p.generator.Generate(scored)
		}

		inserted, err := p.store.SaveResult(scored)
		if err != nil {
			p.log.Error("saving listing failed",
				logger.String("title", scored.Listing.Title), logger.Error(err))
			continue
		}
		if !inserted {
			continue
		}
		summary.New++

		if scored.Relevant() {
			summary.Relevant++
			if err := p.notifier.SendLead(scored); err != nil {
				p.log.Error("lead notification failed", logger.Error(err))
			}
		}
	}
	return relevant, nil
}

// filterFresh drops stale and already-known listings before scoring.
func (p *Pipeline) filterFresh(listings []domain.Listing) ([]domain.Listing, error) {
	now := time.Now()
	var fresh []domain.Listing
	for _, l := range listings {
		if !scrape.FreshWithin(l, p.cfg.Scraper.MaxListingAge, now) {
			continue
		}
		known, err := p.store.Exists(l.URLHash())
		if err != nil {
			return nil, fmt.Errorf("dedup check: %w", err)
		}
		if known {
			continue
		}
		fresh = append(fresh, l)
	}
	return fresh, nil
}

// SendDailySummary builds and sends the end-of-day digest.
func (p *Pipeline) SendDailySummary() error {
	stats, err := p.store.TodayStats()
	if err != nil {
		return fmt.Errorf("daily summary stats: %w", err)
	}
	top, err := p.store.TopToday(3)
	if err != nil {
		return fmt.Errorf("daily summary top: %w", err)
	}
	return p.notifier.SendDailySummary(stats, top)
}

// Cleanup removes old listings and expires stale pending decisions.
func (p *Pipeline) Cleanup() error {
	if _, err := p.store.Cleanup(p.cfg.Database.CleanupDays); err != nil {
		return err
	}
	if _, err := p.store.ExpireDecisions(p.cfg.Database.CleanupDays); err != nil {
		return err
	}
	return nil
}

// searchTerms collects the configured per-category search terms, capped to
// the per-run maximum.
func (p *Pipeline) searchTerms() []string {
	var terms []string
	for _, cat := range p.cfg.Categories {
		terms = append(terms, cat.SearchTerms...)
	}
	if len(terms) > p.cfg.Scraper.MaxTerms {
		terms = terms[:p.cfg.Scraper.MaxTerms]
	}
	return terms
}

// regions returns the configured region names in stable order, capped to
// the per-run maximum.
func (p *Pipeline) regions() []string {
	var regions []string
	for name := range p.cfg.Scraper.Kleinanzeigen.RegionPostcodes {
		regions = append(regions, name)
	}
	sort.Strings(regions)
	if len(regions) > p.cfg.Scraper.MaxRegions {
		regions = regions[:p.cfg.Scraper.MaxRegions]
	}
	return regions
}
