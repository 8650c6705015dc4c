package respond

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

func result(category domain.Category, title, desc string) domain.ScoredResult {
	return domain.ScoredResult{
		Listing:  domain.Listing{Title: title, Description: desc},
		Category: category,
	}
}

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator(logger.NewNop())

	tests := []struct {
		name     string
		res      domain.ScoredResult
		contains string
	}{
		{
			name:     "flooring standard",
			res:      result(domain.CategoryFlooring, "Laminat verlegen", "25 m² Wohnzimmer"),
			contains: "Bodenarbeiten",
		},
		{
			name:     "flooring removal sub-template",
			res:      result(domain.CategoryFlooring, "Alten Boden entfernen", "Teppich raus"),
			contains: "Entfernen alter Bodenbeläge",
		},
		{
			name:     "flooring skirting sub-template",
			res:      result(domain.CategoryFlooring, "Sockelleisten montieren", ""),
			contains: "Sockelleisten",
		},
		{
			name:     "assembly ikea sub-template",
			res:      result(domain.CategoryAssembly, "PAX Schrank aufbauen", "IKEA Lieferung kommt Freitag"),
			contains: "IKEA-Montage",
		},
		{
			name:     "assembly fitness sub-template",
			res:      result(domain.CategoryAssembly, "Power Rack Aufbau", "Homegym im Keller"),
			contains: "Fitnessgeräten",
		},
		{
			name:     "handover landlord sub-template",
			res:      result(domain.CategoryHandover, "Renovierung Mietwohnung", "Vermieter sucht Hilfe"),
			contains: "Vermieter",
		},
		{
			name:     "other fallback",
			res:      result(domain.CategoryOther, "Zaun reparieren", ""),
			contains: "Ihrem Vorhaben",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := g.Generate(tt.res)
			assert.Contains(t, draft, tt.contains)
			assert.Contains(t, draft, "SE Handwerk")
			assert.True(t, len(draft) > 50)
		})
	}
}

func TestGenerator_UnknownCategoryFallsBackToOther(t *testing.T) {
	g := NewGenerator(logger.NewNop())

	draft := g.Generate(result(domain.Category("unknown"), "Test", ""))
	assert.Contains(t, draft, "Ihrem Vorhaben")
}
