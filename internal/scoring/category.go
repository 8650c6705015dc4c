package scoring

import (
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
)

// Classifier assigns each listing one service category by keyword voting:
// the category whose keyword list has the most distinct hits in the text
// wins. Declaration order breaks ties.
type Classifier struct {
	categories []categoryMatcher
}

type categoryMatcher struct {
	name    domain.Category
	matcher *ahocorasick.Matcher
}

// NewClassifier compiles one multi-pattern matcher per configured category.
func NewClassifier(categories []config.CategoryConfig) *Classifier {
	c := &Classifier{}
	for _, cat := range categories {
		if len(cat.Keywords) == 0 {
			continue
		}
		c.categories = append(c.categories, categoryMatcher{
			name:    domain.Category(cat.Name),
			matcher: ahocorasick.NewStringMatcher(lowerAll(cat.Keywords)),
		})
	}
	return c
}

// Classify returns the best-matching category, or CategoryOther when no
// keyword list matches at all. Deterministic for a given listing.
func (c *Classifier) Classify(l domain.Listing) domain.Category {
	text := []byte(strings.ToLower(l.Text()))

	best := domain.CategoryOther
	bestCount := 0
	for _, cat := range c.categories {
		// Match reports each dictionary entry at most once, so the
		// length is the distinct-keyword count.
		count := len(cat.matcher.Match(text))
		if count > bestCount {
			best = cat.name
			bestCount = count
		}
	}

	return best
}
