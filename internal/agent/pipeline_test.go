package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/learn"
	"github.com/Susa-Sek/se-handwerk/internal/llm"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
	"github.com/Susa-Sek/se-handwerk/internal/notify"
	"github.com/Susa-Sek/se-handwerk/internal/respond"
	"github.com/Susa-Sek/se-handwerk/internal/scoring"
	"github.com/Susa-Sek/se-handwerk/internal/scrape"
	"github.com/Susa-Sek/se-handwerk/internal/store"
)

type stubScraper struct {
	listings []domain.Listing
	searches int
}

func (s *stubScraper) Name() domain.Source { return domain.SourceKleinanzeigen }

func (s *stubScraper) Search(_ context.Context, _, _ string) ([]domain.Listing, error) {
	s.searches++
	return s.listings, nil
}

func sampleListings() []domain.Listing {
	return []domain.Listing{
		{
			URL:         "https://example.com/laminat-60qm",
			Title:       "Laminat verlegen gesucht",
			Description: "Wir brauchen dringend jemanden, der in unserer Wohnung 60 m² Laminat verlegt.",
			Location:    "74072 Heilbronn",
			Source:      domain.SourceKleinanzeigen,
		},
		{
			URL:         "https://example.com/fliesen-bad",
			Title:       "Fliesen verlegen im Bad",
			Description: "Badezimmer soll neu gefliest werden, etwa 12 Quadratmeter.",
			Location:    "74072 Heilbronn",
			Source:      domain.SourceKleinanzeigen,
		},
		{
			URL:         "https://example.com/gartenhilfe",
			Title:       "Suche Gartenhilfe",
			Description: "Rasen mähen.",
			Source:      domain.SourceKleinanzeigen,
		},
	}
}

func testPipeline(t *testing.T, scrapers ...scrape.Scraper) (*Pipeline, *store.Store) {
	t.Helper()

	cfg := &config.Config{}
	config.SetDefaults(cfg)
	cfg.Scraper.MaxTerms = 1
	cfg.Scraper.MaxRegions = 1
	cfg.Scraper.MaxDelay = 0 // no politeness delays in tests

	st, err := store.New(config.DatabaseConfig{Path: ":memory:"}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	engine := scoring.NewEngine(cfg, nil, logger.NewNop())
	client := llm.NewClient(config.LLMConfig{}, logger.NewNop())
	scorer := llm.NewScorer(client, engine, cfg.LLM, logger.NewNop())
	notifier, err := notify.New(config.TelegramConfig{}, logger.NewNop())
	require.NoError(t, err)
	reporter := learn.NewReporter(st, cfg.Learning, logger.NewNop())

	p := NewPipeline(cfg, st, scrapers, scorer, respond.NewGenerator(logger.NewNop()),
		notifier, reporter, logger.NewNop())
	return p, st
}

func TestPipeline_RunOnce(t *testing.T) {
	scraper := &stubScraper{listings: sampleListings()}
	p, st := testPipeline(t, scraper)

	summary, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Found)
	assert.Equal(t, 3, summary.Fresh)
	assert.Equal(t, 3, summary.New)
	// Only the flooring lead scores above the medium threshold; the tiling
	// request hits an exclusion rule and the garden job lands in "other".
	assert.Equal(t, 1, summary.Relevant)

	stats, err := st.TodayStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.High)
	assert.Equal(t, 2, stats.Low)

	top, err := st.TopToday(1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Laminat verlegen gesucht", top[0].Title)
	assert.NotEmpty(t, top[0].ResponseDraft)

	// The run was logged for the learning layer.
	platforms, err := st.PlatformStatsSince(1)
	require.NoError(t, err)
	require.Len(t, platforms, 1)
	assert.Equal(t, "kleinanzeigen", platforms[0].Platform)
	assert.Equal(t, 3, platforms[0].Results)
	assert.Equal(t, 1, platforms[0].Relevant)
}

func TestPipeline_SecondRunDeduplicates(t *testing.T) {
	scraper := &stubScraper{listings: sampleListings()}
	p, _ := testPipeline(t, scraper)

	_, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	summary, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Found)
	assert.Equal(t, 0, summary.Fresh)
	assert.Equal(t, 0, summary.New)
	assert.Equal(t, 0, summary.Relevant)
}

func TestPipeline_StaleListingsAreSkipped(t *testing.T) {
	listings := sampleListings()
	for i := range listings {
		listings[i].PostedAt = "01.01.2020"
	}
	scraper := &stubScraper{listings: listings}
	p, _ := testPipeline(t, scraper)
	p.cfg.Scraper.MaxListingAge = 24 * time.Hour

	summary, err := p.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Found)
	assert.Equal(t, 0, summary.Fresh)
	assert.Equal(t, 0, summary.New)
}

func TestPipeline_TermAndRegionCaps(t *testing.T) {
	p, _ := testPipeline(t)
	p.cfg.Scraper.MaxTerms = 2
	p.cfg.Scraper.MaxRegions = 2

	assert.Len(t, p.searchTerms(), 2)
	assert.Len(t, p.regions(), 2)

	// Region order is stable across calls.
	assert.Equal(t, p.regions(), p.regions())
}

func TestDailySpec(t *testing.T) {
	tests := []struct {
		clock   string
		want    string
		wantErr bool
	}{
		{clock: "20:00", want: "0 20 * * *"},
		{clock: "07:30", want: "30 7 * * *"},
		{clock: " 9:05 ", want: "5 9 * * *"},
		{clock: "24:00", wantErr: true},
		{clock: "12:60", wantErr: true},
		{clock: "abends", wantErr: true},
		{clock: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.clock, func(t *testing.T) {
			got, err := dailySpec(tt.clock)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
