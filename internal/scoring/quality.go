package scoring

import (
	"regexp"
	"strings"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
)

const (
	minDescriptionLen      = 20
	detailedDescriptionLen = 50
)

var (
	areaPattern = regexp.MustCompile(`\d+\s*(m²|m2|qm|quadrat)`)
	roomPattern = regexp.MustCompile(`\d+\s*(zimmer|räume|raum)`)
)

// QualityHeuristics holds three independent boolean signals about a listing:
// private requester, urgency, and descriptive adequacy.
type QualityHeuristics struct {
	commercialMarkers []string
	urgencyPhrases    []string
}

// NewQualityHeuristics builds the heuristics from configuration.
func NewQualityHeuristics(cfg config.ExclusionsConfig) *QualityHeuristics {
	return &QualityHeuristics{
		commercialMarkers: lowerAll(cfg.CommercialMarkers),
		urgencyPhrases:    lowerAll(cfg.UrgencyPhrases),
	}
}

// IsPrivateCustomer reports whether the listing looks like a private
// (non-commercial) requester. Absence of commercial markers means private.
func (q *QualityHeuristics) IsPrivateCustomer(l domain.Listing) bool {
	text := strings.ToLower(l.Text())
	for _, marker := range q.commercialMarkers {
		if strings.Contains(text, marker) {
			return false
		}
	}
	return true
}

// HasUrgency reports whether any configured urgency phrase appears.
func (q *QualityHeuristics) HasUrgency(l domain.Listing) bool {
	text := strings.ToLower(l.Text())
	for _, phrase := range q.urgencyPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// HasRealisticDescription reports whether the description is detailed enough
// to suggest a serious request. Under 20 characters is never realistic. An
// area measurement ("25 m²") or room count ("3 Zimmer") anywhere in the
// description is enough on its own; without one, at least 50 characters are
// required.
func (q *QualityHeuristics) HasRealisticDescription(l domain.Listing) bool {
	desc := l.Description
	if len([]rune(desc)) < minDescriptionLen {
		return false
	}

	lower := strings.ToLower(desc)
	if areaPattern.MatchString(lower) || roomPattern.MatchString(lower) {
		return true
	}

	return len([]rune(desc)) >= detailedDescriptionLen
}
