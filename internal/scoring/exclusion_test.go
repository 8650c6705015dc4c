package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
)

func testExclusions() config.ExclusionsConfig {
	var full config.Config
	config.SetDefaults(&full)
	return full.Exclusions
}

func TestExclusionRules_IsExcluded(t *testing.T) {
	rules := NewExclusionRules(testExclusions())

	tests := []struct {
		name       string
		listing    domain.Listing
		wantExcl   bool
		wantReason string
	}{
		{
			name:       "excluded service in title",
			listing:    domain.Listing{Title: "Fliesen verlegen im Bad"},
			wantExcl:   true,
			wantReason: "excluded service: fliesen verlegen",
		},
		{
			name:       "excluded service case insensitive",
			listing:    domain.Listing{Description: "Suche DACHDECKER für Reparatur"},
			wantExcl:   true,
			wantReason: "excluded service: dachdecker",
		},
		{
			name:       "budget phrase",
			listing:    domain.Listing{Description: "Laminat verlegen, bitte ohne Rechnung"},
			wantExcl:   true,
			wantReason: "low-budget inquiry: ohne rechnung",
		},
		{
			name:     "clean listing",
			listing:  domain.Listing{Title: "Laminat verlegen", Description: "40 m² Wohnzimmer"},
			wantExcl: false,
		},
		{
			name:     "empty listing",
			listing:  domain.Listing{},
			wantExcl: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			excl, reason := rules.IsExcluded(tt.listing)
			assert.Equal(t, tt.wantExcl, excl)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestExclusionRules_ServiceReasonWinsOverBudget(t *testing.T) {
	rules := NewExclusionRules(config.ExclusionsConfig{
		Services:      []string{"fliesen"},
		BudgetPhrases: []string{"ohne rechnung"},
	})

	excl, reason := rules.IsExcluded(domain.Listing{
		Title:       "Fliesen legen",
		Description: "am besten ohne Rechnung",
	})

	assert.True(t, excl)
	assert.Equal(t, "excluded service: fliesen", reason)
}

func TestExclusionRules_EmptyListsNeverMatch(t *testing.T) {
	rules := NewExclusionRules(config.ExclusionsConfig{})

	excl, reason := rules.IsExcluded(domain.Listing{
		Title:       "Fliesen verlegen ohne Rechnung",
		Description: "so billig wie möglich",
	})

	assert.False(t, excl)
	assert.Empty(t, reason)
}
