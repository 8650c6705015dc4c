package scoring

import (
	"context"
	"regexp"
	"strings"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

const (
	// pointsPerQualitySignal is awarded per true quality predicate.
	pointsPerQualitySignal = 10
	// minRegionScore applies when a location is set but matches no region:
	// residual uncertainty, not certain exclusion.
	minRegionScore = 5

	fitnessBonus  = 5
	handoverBonus = 3
)

// Service score as a fraction of the configured service weight, per category.
// Flooring is the core business and gets the full weight.
var serviceFractions = map[domain.Category]float64{
	domain.CategoryFlooring: 1.0,
	domain.CategoryAssembly: 0.875,
	domain.CategoryHandover: 0.75,
	domain.CategoryOther:    0.375,
}

// Home-gym work has little competition and good margins, worth a small bump.
var fitnessKeywords = []string{
	"homegym", "power rack", "squat rack", "fitnessgerät",
	"kraftstation", "hantelbank", "laufband",
}

var postalCodePattern = regexp.MustCompile(`\d{5}`)

// AreaChecker decides whether a free-text location lies within the service
// radius. distanceKM is negative when no distance was computed.
type AreaChecker interface {
	Check(ctx context.Context, location string) (eligible bool, distanceKM float64, reason string)
}

// Engine composes exclusion rules, geographic eligibility, category
// classification and quality heuristics into a deterministic 0-100 score
// with a priority tier. Safe for concurrent use; all configuration is
// read-only after construction.
type Engine struct {
	weights    config.ScoringConfig
	regions    []config.RegionConfig
	exclusions *ExclusionRules
	classifier *Classifier
	quality    *QualityHeuristics
	area       AreaChecker
	log        logger.Logger
}

// NewEngine builds the scoring engine. area may be nil, in which case no
// geographic hard reject is applied.
func NewEngine(cfg *config.Config, area AreaChecker, log logger.Logger) *Engine {
	regions := make([]config.RegionConfig, len(cfg.Regions))
	for i, r := range cfg.Regions {
		r.Keywords = lowerAll(r.Keywords)
		regions[i] = r
		if len(r.Keywords) == 0 && len(r.PostalPrefixes) == 0 {
			log.Warn("region has no keywords or postal prefixes and will never match",
				logger.String("region", r.Name))
		}
	}

	return &Engine{
		weights:    cfg.Scoring,
		regions:    regions,
		exclusions: NewExclusionRules(cfg.Exclusions),
		classifier: NewClassifier(cfg.Categories),
		quality:    NewQualityHeuristics(cfg.Exclusions),
		area:       area,
		log:        log,
	}
}

// Evaluate scores one listing. It never fails: sparse input maps to the
// least-informative outcome per field, and geocoding errors have already
// degraded to static heuristics inside the area checker.
func (e *Engine) Evaluate(ctx context.Context, l domain.Listing) domain.ScoredResult {
	if excluded, reason := e.exclusions.IsExcluded(l); excluded {
		e.log.Debug("listing excluded",
			logger.String("title", truncate(l.Title, 50)),
			logger.String("reason", reason))
		return excludedResult(l, reason)
	}

	if e.area != nil {
		if eligible, _, reason := e.area.Check(ctx, l.Location); !eligible {
			e.log.Debug("listing outside service area",
				logger.String("title", truncate(l.Title, 50)),
				logger.String("reason", reason))
			return excludedResult(l, reason)
		}
	}

	category := e.classifier.Classify(l)

	regionScore := e.scoreRegion(l.Location)
	serviceScore := e.scoreService(l, category)
	qualityScore := e.scoreQuality(l)
	total := clamp(regionScore+serviceScore+qualityScore, 0, 100)

	priority := e.priorityFor(total)

	e.log.Info("listing scored",
		logger.Int("total", total),
		logger.String("priority", string(priority)),
		logger.Int("region", regionScore),
		logger.Int("service", serviceScore),
		logger.Int("quality", qualityScore),
		logger.String("category", string(category)),
		logger.String("title", truncate(l.Title, 50)))

	return domain.ScoredResult{
		Listing:      l,
		TotalScore:   total,
		RegionScore:  regionScore,
		ServiceScore: serviceScore,
		QualityScore: qualityScore,
		Category:     category,
		Priority:     priority,
	}
}

// scoreRegion returns the point value of the first configured region the
// location matches. Keywords are checked before postal prefixes within each
// region, and earlier-declared regions win. An empty location is worth a
// third of the maximum; a location matching nothing still gets a small
// residual score.
func (e *Engine) scoreRegion(location string) int {
	maxPoints := e.weights.RegionWeight
	loc := strings.ToLower(location)

	if loc == "" {
		return maxPoints / 3
	}

	codes := postalCodePattern.FindAllString(loc, -1)

	for _, region := range e.regions {
		for _, kw := range region.Keywords {
			if strings.Contains(loc, kw) {
				return clamp(region.Score, 0, maxPoints)
			}
		}
		for _, prefix := range region.PostalPrefixes {
			for _, code := range codes {
				if strings.HasPrefix(code, prefix) {
					return clamp(region.Score, 0, maxPoints)
				}
			}
		}
	}

	return minRegionScore
}

// scoreService maps the category to a fraction of the service weight and
// adds small bonuses for high-value keyword clusters. Bonuses never push the
// sub-score above the configured weight.
func (e *Engine) scoreService(l domain.Listing, category domain.Category) int {
	maxPoints := e.weights.ServiceWeight

	fraction, ok := serviceFractions[category]
	if !ok {
		fraction = serviceFractions[domain.CategoryOther]
	}
	score := int(float64(maxPoints) * fraction)

	text := strings.ToLower(l.Text())

	for _, kw := range fitnessKeywords {
		if strings.Contains(text, kw) {
			score += fitnessBonus
			break
		}
	}

	// Move-out handovers that also need flooring or painting span several
	// trades in one job.
	if strings.Contains(text, "übergabe") &&
		(strings.Contains(text, "boden") || strings.Contains(text, "streichen")) {
		score += handoverBonus
	}

	return clamp(score, 0, maxPoints)
}

// scoreQuality awards a fixed number of points per true quality predicate.
func (e *Engine) scoreQuality(l domain.Listing) int {
	score := 0
	if e.quality.IsPrivateCustomer(l) {
		score += pointsPerQualitySignal
	}
	if e.quality.HasRealisticDescription(l) {
		score += pointsPerQualitySignal
	}
	if e.quality.HasUrgency(l) {
		score += pointsPerQualitySignal
	}
	return clamp(score, 0, e.weights.QualityWeight)
}

func (e *Engine) priorityFor(total int) domain.Priority {
	switch {
	case total >= e.weights.ThresholdHigh:
		return domain.PriorityHigh
	case total >= e.weights.ThresholdMedium:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

func excludedResult(l domain.Listing, reason string) domain.ScoredResult {
	return domain.ScoredResult{
		Listing:         l,
		Category:        domain.CategoryOther,
		Priority:        domain.PriorityLow,
		Excluded:        true,
		ExclusionReason: reason,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
