package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

const sampleResultsPage = `
<html><body>
<ul>
<li class="ad-listitem">
  <article class="aditem">
    <div class="aditem-main--top--left">74074 Heilbronn</div>
    <div class="aditem-main--top--right">Heute, 14:30</div>
    <h2 class="text-module-begin"><a class="ellipsis" href="/s-anzeige/laminat-verlegen/123">Laminat verlegen gesucht</a></h2>
    <p class="aditem-main--middle--description">Wohnzimmer 25 m², Material vorhanden</p>
    <p class="aditem-main--middle--price-shipping--price">VB</p>
  </article>
</li>
<li class="ad-listitem">
  <article class="aditem">
    <div class="aditem-main--top--left">70173 Stuttgart</div>
    <h2 class="text-module-begin"><a class="ellipsis" href="https://www.kleinanzeigen.de/s-anzeige/vinyl/456">Vinylboden verlegen</a></h2>
    <p class="aditem-main--middle--description">3 Zimmer, Altbau</p>
  </article>
</li>
<li class="ad-listitem">
  <article class="aditem">
    <p>kaputtes Markup ohne Titel-Link</p>
  </article>
</li>
</ul>
</body></html>`

func testFetcher(log logger.Logger) *Fetcher {
	return NewFetcher(config.ScraperConfig{
		Timeout:    2 * time.Second,
		MaxRetries: 3,
	}, log)
}

func testKleinanzeigen(t *testing.T, baseURL string) *Kleinanzeigen {
	t.Helper()
	return NewKleinanzeigen(config.KleinanzeigenConfig{
		BaseURL:         baseURL,
		RegionPostcodes: map[string]string{"Heilbronn": "74072"},
		RadiusKM:        100,
	}, testFetcher(logger.NewNop()), logger.NewNop())
}

func TestKleinanzeigen_Search(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, sampleResultsPage)
	}))
	defer srv.Close()

	k := testKleinanzeigen(t, srv.URL)

	listings, err := k.Search(context.Background(), "laminat verlegen", "Heilbronn")
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "/s-74072/anzeige:gesuche/laminat+verlegen/k0r100", gotPath)

	first := listings[0]
	assert.Equal(t, "Laminat verlegen gesucht", first.Title)
	assert.Equal(t, "Wohnzimmer 25 m², Material vorhanden", first.Description)
	assert.Equal(t, "74074 Heilbronn", first.Location)
	assert.Equal(t, "Heute, 14:30", first.PostedAt)
	assert.Equal(t, "VB", first.Price)
	assert.Equal(t, domain.SourceKleinanzeigen, first.Source)
	// Relative links are resolved against the base URL.
	assert.Equal(t, srv.URL+"/s-anzeige/laminat-verlegen/123", first.URL)

	// Absolute links pass through untouched.
	assert.Equal(t, "https://www.kleinanzeigen.de/s-anzeige/vinyl/456", listings[1].URL)
}

func TestKleinanzeigen_UnknownRegionUsesFallbackPostcode(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, "<html><body></body></html>")
	}))
	defer srv.Close()

	k := testKleinanzeigen(t, srv.URL)

	listings, err := k.Search(context.Background(), "montage", "Nirgendwo")
	require.NoError(t, err)
	assert.Empty(t, listings)
	assert.Contains(t, gotPath, "/s-74072/")
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	f := testFetcher(logger.NewNop())

	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetcher_ForbiddenDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := testFetcher(logger.NewNop())

	_, err := f.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchAll_CapsAndDeduplicates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, sampleResultsPage)
	}))
	defer srv.Close()

	k := testKleinanzeigen(t, srv.URL)
	cfg := config.ScraperConfig{MaxPerSearch: 20}

	// The same page served for both terms yields duplicate URLs; the batch
	// must contain each listing once overall.
	results := SearchAll(context.Background(), k, cfg,
		[]string{"laminat verlegen", "vinyl verlegen"}, []string{"Heilbronn"},
		logger.NewNop())

	require.Len(t, results, 2)
	assert.Len(t, results[0].Listings, 2)
	assert.Empty(t, results[1].Listings)
}

func TestSearchAll_SurvivesFailingSearches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	k := testKleinanzeigen(t, srv.URL)
	cfg := config.ScraperConfig{MaxPerSearch: 20}

	results := SearchAll(context.Background(), k, cfg,
		[]string{"laminat"}, []string{"Heilbronn"}, logger.NewNop())

	require.Len(t, results, 1)
	assert.Empty(t, results[0].Listings)
}
