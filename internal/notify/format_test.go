package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/store"
)

func TestFormatLead(t *testing.T) {
	res := domain.ScoredResult{
		Listing: domain.Listing{
			URL:         "https://www.kleinanzeigen.de/s-anzeige/123",
			Title:       "Laminat verlegen <dringend>",
			Description: "Wohnzimmer 25 m², Material vorhanden",
			Location:    "74074 Heilbronn",
			Source:      domain.SourceKleinanzeigen,
			FoundAt:     time.Date(2026, 8, 25, 14, 30, 0, 0, time.Local),
			Price:       "VB",
		},
		TotalScore:    95,
		RegionScore:   30,
		ServiceScore:  40,
		QualityScore:  25,
		Category:      domain.CategoryFlooring,
		Priority:      domain.PriorityHigh,
		ResponseDraft: "Guten Tag, gerne helfen wir.",
	}

	text := FormatLead(res)

	assert.Contains(t, text, "🟢")
	assert.Contains(t, text, "Score: 95/100")
	// HTML in user content must be escaped.
	assert.Contains(t, text, "Laminat verlegen &lt;dringend&gt;")
	assert.NotContains(t, text, "<dringend>")
	assert.Contains(t, text, "Bodenarbeiten")
	assert.Contains(t, text, "Quelle: Kleinanzeigen")
	assert.Contains(t, text, "30R + 40L + 25Q")
	assert.Contains(t, text, "25.08.2026, 14:30")
	assert.Contains(t, text, "💶 VB")
	assert.Contains(t, text, "Vorgeschlagene Antwort")
}

func TestFormatLead_TruncatesLongDescription(t *testing.T) {
	long := make([]rune, 300)
	for i := range long {
		long[i] = 'x'
	}

	res := domain.ScoredResult{
		Listing:  domain.Listing{Title: "T", Description: string(long)},
		Priority: domain.PriorityMedium,
		Category: domain.CategoryOther,
	}

	text := FormatLead(res)
	assert.Contains(t, text, "...")
	assert.NotContains(t, text, string(long))
}

func TestFormatDailySummary(t *testing.T) {
	stats := store.DayStats{Total: 12, High: 3, Medium: 5, Low: 4, Answered: 2}
	top := []store.StoredListing{
		{Title: "Laminat verlegen", Location: "Heilbronn", Score: 95, URL: "https://a"},
		{Title: "PAX aufbauen", Location: "Stuttgart", Score: 70, URL: "https://b"},
	}

	text := FormatDailySummary(stats, top)

	assert.Contains(t, text, "Gefunden: <b>12</b>")
	assert.Contains(t, text, "🟢 Hoch: <b>3</b>")
	assert.Contains(t, text, "✅ Beantwortet: <b>2</b>")
	assert.Contains(t, text, "🥇")
	assert.Contains(t, text, "🥈")
	assert.Contains(t, text, "Laminat verlegen")
}

func TestFormatDailySummary_NoTopSection(t *testing.T) {
	text := FormatDailySummary(store.DayStats{}, nil)
	assert.NotContains(t, text, "Top Aufträge")
}

func TestFormatPendingDecisions(t *testing.T) {
	decisions := []store.Decision{
		{ID: "abc-123", Kind: "search_term", Title: "Neuer Suchbegriff: parkett schleifen"},
	}

	text := FormatPendingDecisions(decisions)
	assert.Contains(t, text, "Offene Entscheidungen (1)")
	assert.Contains(t, text, "abc-123")
	assert.Contains(t, text, "parkett schleifen")
}
