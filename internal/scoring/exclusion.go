// Package scoring implements the rule-based relevance engine: hard exclusion
// rules, category classification, quality heuristics and the 0-100 scorer.
package scoring

import (
	"strings"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
)

// ExclusionRules rejects listings that reference services the business does
// not offer, or language signaling a price-shopping inquiry.
type ExclusionRules struct {
	services      []string
	budgetPhrases []string
}

// NewExclusionRules builds the rule set from configuration. Terms are matched
// case-insensitively as substrings; empty lists are legal and never match.
func NewExclusionRules(cfg config.ExclusionsConfig) *ExclusionRules {
	return &ExclusionRules{
		services:      lowerAll(cfg.Services),
		budgetPhrases: lowerAll(cfg.BudgetPhrases),
	}
}

// IsExcluded reports whether the listing is a hard reject and why.
// Service terms are checked before budget phrases, so when both match the
// service exclusion is the reason reported.
func (r *ExclusionRules) IsExcluded(l domain.Listing) (bool, string) {
	text := strings.ToLower(l.Text())

	for _, term := range r.services {
		if strings.Contains(text, term) {
			return true, "excluded service: " + term
		}
	}

	for _, phrase := range r.budgetPhrases {
		if strings.Contains(text, phrase) {
			return true, "low-budget inquiry: " + phrase
		}
	}

	return false, ""
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
