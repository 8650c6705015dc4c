// Package learn closes the feedback loop: after each run it aggregates
// scrape outcomes into daily metrics and flags search terms and platforms
// that stopped earning their keep. It only ever produces human-reviewable
// suggestions, nothing is disabled automatically.
package learn

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
	"github.com/Susa-Sek/se-handwerk/internal/store"
)

const (
	// weakWindowDays is how far back the weakness check looks.
	weakWindowDays = 14
	// minScrapesForJudgment avoids flagging a term tried only a few times.
	minScrapesForJudgment = 5
	// minResultsForJudgment avoids flagging a platform on thin data.
	minResultsForJudgment = 20

	metricPlatformSuccess = "platform_success"
	metricTermSuccess     = "term_success"
)

// Suggestion flags one weak term or platform for operator review.
type Suggestion struct {
	Kind   string `json:"kind"` // "weak_term" or "weak_platform"
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// Reporter aggregates and reports after each pipeline run.
type Reporter struct {
	store *store.Store
	cfg   config.LearningConfig
	log   logger.Logger
}

// NewReporter builds the reporter.
func NewReporter(st *store.Store, cfg config.LearningConfig, log logger.Logger) *Reporter {
	return &Reporter{store: st, cfg: cfg, log: log}
}

// AfterRun rolls the last day of scrape logs into daily metrics and returns
// suggestions for anything performing below the configured minimum.
func (r *Reporter) AfterRun() ([]Suggestion, error) {
	day := time.Now().Format("2006-01-02")

	if err := r.aggregateDaily(day); err != nil {
		return nil, err
	}

	suggestions, err := r.findWeak()
	if err != nil {
		return nil, err
	}

	if err := r.store.LogAction("learn", "metrics_aggregated",
		fmt.Sprintf("day: %s, suggestions: %d", day, len(suggestions))); err != nil {
		r.log.Warn("action log failed", logger.Error(err))
	}

	r.log.Info("learning metrics aggregated",
		logger.String("day", day),
		logger.Int("suggestions", len(suggestions)))
	return suggestions, nil
}

// PersistSuggestions records each suggestion as a pending decision.
func (r *Reporter) PersistSuggestions(suggestions []Suggestion) error {
	for _, s := range suggestions {
		payload, err := json.Marshal(s)
		if err != nil {
			return fmt.Errorf("marshal suggestion: %w", err)
		}
		title := fmt.Sprintf("Deaktivierung prüfen: %s", s.Key)
		if _, err := r.store.CreateDecision(s.Kind, title, string(payload)); err != nil {
			return fmt.Errorf("persist suggestion %s: %w", s.Key, err)
		}
	}
	return nil
}

func (r *Reporter) aggregateDaily(day string) error {
	platforms, err := r.store.PlatformStatsSince(1)
	if err != nil {
		return fmt.Errorf("aggregate platforms: %w", err)
	}
	for _, p := range platforms {
		rate := 0.0
		if p.Results > 0 {
			rate = float64(p.Relevant) / float64(p.Results)
		}
		if err := r.store.SaveMetric(metricPlatformSuccess, p.Platform, day,
			p.Results, p.Relevant, rate); err != nil {
			return err
		}
	}

	terms, err := r.store.TermStatsSince(1)
	if err != nil {
		return fmt.Errorf("aggregate terms: %w", err)
	}
	for _, t := range terms {
		rate := 0.0
		if t.Results > 0 {
			rate = float64(t.Relevant) / float64(t.Results)
		}
		if err := r.store.SaveMetric(metricTermSuccess, t.SearchTerm, day,
			t.Results, t.Relevant, rate); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) findWeak() ([]Suggestion, error) {
	var suggestions []Suggestion

	terms, err := r.store.TermStatsSince(weakWindowDays)
	if err != nil {
		return nil, fmt.Errorf("weak terms: %w", err)
	}
	for _, t := range terms {
		if t.Relevant == 0 && t.Scrapes >= minScrapesForJudgment {
			suggestions = append(suggestions, Suggestion{
				Kind: "weak_term",
				Key:  t.SearchTerm,
				Reason: fmt.Sprintf("0 relevante Treffer bei %d Suchen in %d Tagen",
					t.Scrapes, weakWindowDays),
			})
		}
	}

	platforms, err := r.store.PlatformStatsSince(weakWindowDays)
	if err != nil {
		return nil, fmt.Errorf("weak platforms: %w", err)
	}
	for _, p := range platforms {
		if p.Results < minResultsForJudgment {
			continue
		}
		rate := float64(p.Relevant) / float64(p.Results)
		if rate < r.cfg.MinSuccessRate {
			suggestions = append(suggestions, Suggestion{
				Kind: "weak_platform",
				Key:  p.Platform,
				Reason: fmt.Sprintf("Erfolgsrate %.1f%% unter Minimum %.1f%% (%d/%d relevant)",
					rate*100, r.cfg.MinSuccessRate*100, p.Relevant, p.Results),
			})
		}
	}

	return suggestions, nil
}
