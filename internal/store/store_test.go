package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(config.DatabaseConfig{Path: ":memory:"}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(url string, score int, priority domain.Priority) domain.ScoredResult {
	return domain.ScoredResult{
		Listing: domain.Listing{
			URL:         url,
			Title:       "Laminat verlegen",
			Description: "25 m² Wohnzimmer",
			Location:    "Heilbronn",
			Source:      domain.SourceKleinanzeigen,
		},
		TotalScore:    score,
		Category:      domain.CategoryFlooring,
		Priority:      priority,
		ResponseDraft: "Hallo, gerne übernehmen wir das.",
	}
}

func TestStore_SaveAndDedup(t *testing.T) {
	s := testStore(t)
	res := testResult("https://example.com/anzeige/1", 85, domain.PriorityHigh)

	inserted, err := s.SaveResult(res)
	require.NoError(t, err)
	assert.True(t, inserted)

	known, err := s.Exists(res.Listing.URLHash())
	require.NoError(t, err)
	assert.True(t, known)

	// Same URL again is a dedup hit.
	inserted, err = s.SaveResult(res)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestStore_ExistsUnknown(t *testing.T) {
	s := testStore(t)

	known, err := s.Exists("deadbeef")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestStore_UpdateStatus(t *testing.T) {
	s := testStore(t)
	res := testResult("https://example.com/anzeige/2", 50, domain.PriorityMedium)

	_, err := s.SaveResult(res)
	require.NoError(t, err)

	require.NoError(t, s.UpdateStatus(res.Listing.URLHash(), domain.StatusAnswered))

	stats, err := s.TodayStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Answered)
}

func TestStore_TodayStatsAndTop(t *testing.T) {
	s := testStore(t)

	_, err := s.SaveResult(testResult("https://example.com/a", 90, domain.PriorityHigh))
	require.NoError(t, err)
	_, err = s.SaveResult(testResult("https://example.com/b", 55, domain.PriorityMedium))
	require.NoError(t, err)
	_, err = s.SaveResult(testResult("https://example.com/c", 20, domain.PriorityLow))
	require.NoError(t, err)

	stats, err := s.TodayStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.High)
	assert.Equal(t, 1, stats.Medium)
	assert.Equal(t, 1, stats.Low)

	top, err := s.TopToday(2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 90, top[0].Score)
	assert.Equal(t, 55, top[1].Score)
}

func TestStore_Cleanup(t *testing.T) {
	s := testStore(t)

	_, err := s.SaveResult(testResult("https://example.com/fresh", 80, domain.PriorityHigh))
	require.NoError(t, err)

	// Backdate one row past the retention window.
	_, err = s.db.Exec(`
		INSERT INTO listings (url_hash, url, title, source, found_at)
		VALUES ('old', 'https://example.com/old', 'Alt', 'kleinanzeigen',
		        datetime('now', '-60 days'))`)
	require.NoError(t, err)

	removed, err := s.Cleanup(30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	known, err := s.Exists("old")
	require.NoError(t, err)
	assert.False(t, known)
}

func TestStore_ScrapeLogAggregation(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.LogScrape("kleinanzeigen", "laminat verlegen", 12, 3))
	require.NoError(t, s.LogScrape("kleinanzeigen", "vinyl verlegen", 5, 0))
	require.NoError(t, s.LogScrape("myhammer", "laminat verlegen", 4, 1))

	platforms, err := s.PlatformStatsSince(1)
	require.NoError(t, err)
	require.Len(t, platforms, 2)

	byName := map[string]PlatformStats{}
	for _, p := range platforms {
		byName[p.Platform] = p
	}
	assert.Equal(t, 17, byName["kleinanzeigen"].Results)
	assert.Equal(t, 3, byName["kleinanzeigen"].Relevant)
	assert.Equal(t, 2, byName["kleinanzeigen"].Scrapes)

	terms, err := s.TermStatsSince(1)
	require.NoError(t, err)
	require.Len(t, terms, 2)
}

func TestStore_Decisions(t *testing.T) {
	s := testStore(t)

	id, err := s.CreateDecision("search_term", "Neuer Suchbegriff: parkett schleifen",
		`{"term":"parkett schleifen","action":"add"}`)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	pending, err := s.PendingDecisions()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.DecisionPending, pending[0].Status)

	require.NoError(t, s.ResolveDecision(id, domain.DecisionApproved))

	pending, err = s.PendingDecisions()
	require.NoError(t, err)
	assert.Empty(t, pending)

	err = s.ResolveDecision("missing", domain.DecisionRejected)
	assert.Error(t, err)
}

func TestStore_ExpireDecisions(t *testing.T) {
	s := testStore(t)

	_, err := s.db.Exec(`
		INSERT INTO decisions (id, kind, title, payload, status, created_at)
		VALUES ('stale', 'platform', 'Alte Entscheidung', '{}', 'pending',
		        datetime('now', '-20 days'))`)
	require.NoError(t, err)

	n, err := s.ExpireDecisions(14)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	pending, err := s.PendingDecisions()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestStore_SaveMetricUpsert(t *testing.T) {
	s := testStore(t)

	require.NoError(t, s.SaveMetric("platform_success", "kleinanzeigen", "2026-08-25", 10, 2, 0.2))
	require.NoError(t, s.SaveMetric("platform_success", "kleinanzeigen", "2026-08-25", 15, 4, 0.27))

	var count int
	require.NoError(t, s.db.Get(&count, "SELECT COUNT(*) FROM metrics"))
	assert.Equal(t, 1, count)

	var relevant int
	require.NoError(t, s.db.Get(&relevant,
		"SELECT relevant FROM metrics WHERE metric_type = 'platform_success'"))
	assert.Equal(t, 4, relevant)
}
