package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Susa-Sek/se-handwerk/internal/domain"
)

func testQuality() *QualityHeuristics {
	return NewQualityHeuristics(testExclusions())
}

func TestQualityHeuristics_IsPrivateCustomer(t *testing.T) {
	q := testQuality()

	tests := []struct {
		name    string
		listing domain.Listing
		want    bool
	}{
		{"no markers", domain.Listing{Title: "Laminat verlegen", Description: "Privathaushalt"}, true},
		{"gmbh marker", domain.Listing{Description: "Müller GmbH sucht Bodenleger"}, false},
		{"commercial marker", domain.Listing{Description: "Gewerbliche Anfrage, Großauftrag"}, false},
		{"empty listing assumed private", domain.Listing{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, q.IsPrivateCustomer(tt.listing))
		})
	}
}

func TestQualityHeuristics_HasUrgency(t *testing.T) {
	q := testQuality()

	assert.True(t, q.HasUrgency(domain.Listing{Title: "Dringend Boden verlegen"}))
	assert.True(t, q.HasUrgency(domain.Listing{Description: "am besten diese Woche"}))
	assert.False(t, q.HasUrgency(domain.Listing{Description: "irgendwann im Sommer"}))
	assert.False(t, q.HasUrgency(domain.Listing{}))
}

func TestQualityHeuristics_HasRealisticDescription(t *testing.T) {
	q := testQuality()

	tests := []struct {
		name string
		desc string
		want bool
	}{
		{"19 chars no pattern", strings.Repeat("a", 19), false},
		{"20 chars no pattern", strings.Repeat("a", 20), false},
		{"49 chars no pattern", strings.Repeat("a", 49), false},
		{"50 chars no pattern", strings.Repeat("a", 50), true},
		{"area pattern with short text", "Wohnzimmer hat 25 m²", true},
		{"area pattern qm", "Es sind etwa 30qm Fläche", true},
		{"room pattern", "Wohnung mit 3 Zimmer renovieren", true},
		{"pattern too short overall", "25 m²", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := q.HasRealisticDescription(domain.Listing{Description: tt.desc})
			assert.Equal(t, tt.want, got)
		})
	}
}
