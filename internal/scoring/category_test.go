package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
)

func testCategories() []config.CategoryConfig {
	var full config.Config
	config.SetDefaults(&full)
	return full.Categories
}

func TestClassifier_Classify(t *testing.T) {
	classifier := NewClassifier(testCategories())

	tests := []struct {
		name    string
		listing domain.Listing
		want    domain.Category
	}{
		{
			name:    "flooring keywords",
			listing: domain.Listing{Title: "Laminat verlegen", Description: "Vinyl und Sockelleisten"},
			want:    domain.CategoryFlooring,
		},
		{
			name:    "assembly keywords",
			listing: domain.Listing{Title: "IKEA PAX Montage", Description: "Schrank aufbauen"},
			want:    domain.CategoryAssembly,
		},
		{
			name:    "handover keywords",
			listing: domain.Listing{Title: "Wohnungsübergabe", Description: "Streichen vor Auszug"},
			want:    domain.CategoryHandover,
		},
		{
			name:    "no keywords at all",
			listing: domain.Listing{Title: "Gartenzaun reparieren", Description: "Holzlatten kaputt"},
			want:    domain.CategoryOther,
		},
		{
			name:    "empty listing",
			listing: domain.Listing{},
			want:    domain.CategoryOther,
		},
		{
			name: "more distinct flooring hits win over single assembly hit",
			listing: domain.Listing{
				Title:       "Laminat und Parkett",
				Description: "Bodenbelag erneuern, Montage der Leisten",
			},
			want: domain.CategoryFlooring,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Classify(tt.listing))
		})
	}
}

func TestClassifier_TieGoesToFirstDeclared(t *testing.T) {
	classifier := NewClassifier([]config.CategoryConfig{
		{Name: "flooring", Keywords: []string{"laminat"}},
		{Name: "assembly", Keywords: []string{"montage"}},
	})

	// One distinct hit each; the first-declared category wins.
	got := classifier.Classify(domain.Listing{Title: "Laminat Montage"})
	assert.Equal(t, domain.CategoryFlooring, got)
}

func TestClassifier_RepeatedKeywordCountsOnce(t *testing.T) {
	classifier := NewClassifier([]config.CategoryConfig{
		{Name: "flooring", Keywords: []string{"laminat"}},
		{Name: "assembly", Keywords: []string{"montage", "aufbau"}},
	})

	// "laminat" three times is still one distinct keyword; assembly has two.
	got := classifier.Classify(domain.Listing{
		Title:       "Laminat Laminat Laminat",
		Description: "Montage und Aufbau",
	})
	assert.Equal(t, domain.CategoryAssembly, got)
}

func TestClassifier_Deterministic(t *testing.T) {
	classifier := NewClassifier(testCategories())
	l := domain.Listing{Title: "Vinyl verlegen", Description: "30 qm Klickvinyl"}

	first := classifier.Classify(l)
	second := classifier.Classify(l)

	assert.Equal(t, first, second)
	assert.Equal(t, domain.CategoryFlooring, first)
}
