package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

const scorerSystemPrompt = `Du bist ein Bewertungs-Analyst für SE Handwerk, einen Handwerksbetrieb in Heilbronn.

SE Handwerk bietet:
- Bodenarbeiten: Laminat verlegen, Vinyl/Klickvinyl verlegen, Sockelleisten, Trittschalldämmung, alten Boden entfernen
- Möbel-/Gerätemontage: IKEA-Möbel, Homegym/Fitnessgeräte (Power Rack, Kraftstation), Küchenmontage
- Wohnungsübergabe: Renovierung vor Auszug, Streichen, Kleinreparaturen

Region: Heilbronn + 70 km Umkreis (Stuttgart, Ludwigsburg, Mannheim, Heidelberg, Schwäbisch Hall, Neckarsulm, Weinsberg).

Bewerte jedes Listing nach:
1. Leistung: Passt es zu SE Handwerk? (0-40 Punkte)
2. Region: Liegt es im Einzugsgebiet? (0-30 Punkte)
3. Qualität: Konkreter Auftrag? Privatkunde? Dringend? Realistische Beschreibung? (0-30 Punkte)

Kategorien: flooring, assembly, handover, other
Priorität: high (Score >= 70), medium (40-69), low (< 40)

Antworte IMMER als JSON-Array:
[
  {
    "index": 0,
    "score_total": 75,
    "score_region": 25,
    "score_service": 30,
    "score_quality": 20,
    "category": "flooring",
    "priority": "high",
    "rationale": "Kurze Begründung"
  }
]

Wichtig:
- Werbung, Shops und Info-Seiten bekommen Score 0 (low)
- Unklare Orte ohne Baden-Württemberg-Bezug: Region-Score maximal 5
- "Gesuch" oder "Suche" im Titel erhöht den Qualitäts-Score
- Gewerbekunden (GmbH, Firma) leicht niedriger als Privat`

// RuleScorer is the deterministic fallback used when the model is
// unavailable, over budget, or returns garbage.
type RuleScorer interface {
	Evaluate(ctx context.Context, l domain.Listing) domain.ScoredResult
}

// Scorer scores listings in batches via the model, falling back to the rule
// engine per batch on any failure.
type Scorer struct {
	client *Client
	rules  RuleScorer
	cfg    config.LLMConfig
	log    logger.Logger
}

// NewScorer builds the model-backed scorer.
func NewScorer(client *Client, rules RuleScorer, cfg config.LLMConfig, log logger.Logger) *Scorer {
	return &Scorer{client: client, rules: rules, cfg: cfg, log: log}
}

// ScoreAll scores every listing, batched to keep token usage bounded.
func (s *Scorer) ScoreAll(ctx context.Context, listings []domain.Listing) []domain.ScoredResult {
	if !s.client.Available() {
		s.log.Info("llm unavailable, using rule-based scorer")
		return s.scoreWithRules(ctx, listings)
	}

	var results []domain.ScoredResult
	for start := 0; start < len(listings); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(listings))
		batch := listings[start:end]

		scored, err := s.scoreBatch(ctx, batch)
		if err != nil {
			s.log.Warn("llm batch scoring failed, falling back to rules",
				logger.Int("batch_start", start), logger.Error(err))
			scored = s.scoreWithRules(ctx, batch)
		}
		results = append(results, scored...)
	}
	return results
}

type batchVerdict struct {
	Index        int    `json:"index"`
	ScoreTotal   int    `json:"score_total"`
	ScoreRegion  int    `json:"score_region"`
	ScoreService int    `json:"score_service"`
	ScoreQuality int    `json:"score_quality"`
	Category     string `json:"category"`
	Priority     string `json:"priority"`
	Rationale    string `json:"rationale"`
}

func (s *Scorer) scoreBatch(ctx context.Context, batch []domain.Listing) ([]domain.ScoredResult, error) {
	answer, err := s.client.Ask(ctx, Request{
		System:    scorerSystemPrompt,
		Prompt:    buildBatchPrompt(batch),
		Model:     s.cfg.Model,
		Agent:     "scorer",
		MaxTokens: int64(s.cfg.MaxTokens * len(batch)),
		JSONMode:  true,
	})
	if err != nil {
		return nil, err
	}

	return parseBatchAnswer(answer, batch)
}

func (s *Scorer) scoreWithRules(ctx context.Context, listings []domain.Listing) []domain.ScoredResult {
	results := make([]domain.ScoredResult, 0, len(listings))
	for _, l := range listings {
		results = append(results, s.rules.Evaluate(ctx, l))
	}
	return results
}

func buildBatchPrompt(batch []domain.Listing) string {
	var b strings.Builder
	b.WriteString("Bewerte folgende Listings:\n")
	for i, l := range batch {
		fmt.Fprintf(&b, "\n[%d]\nTitel: %s\nBeschreibung: %s\nOrt: %s\nQuelle: %s\n",
			i, l.Title, l.Description, l.Location, l.Source)
	}
	return b.String()
}

// parseBatchAnswer maps the model's verdicts back onto the batch. Verdicts
// with an out-of-range index are dropped; listings without a verdict get a
// zero-value low-priority result so positions stay aligned.
func parseBatchAnswer(answer string, batch []domain.Listing) ([]domain.ScoredResult, error) {
	var verdicts []batchVerdict
	if err := json.Unmarshal([]byte(answer), &verdicts); err != nil {
		return nil, fmt.Errorf("parse scorer answer: %w", err)
	}
	if len(verdicts) == 0 {
		return nil, fmt.Errorf("scorer answer contains no verdicts")
	}

	results := make([]domain.ScoredResult, len(batch))
	assigned := make([]bool, len(batch))

	for _, v := range verdicts {
		if v.Index < 0 || v.Index >= len(batch) {
			continue
		}
		results[v.Index] = verdictToResult(v, batch[v.Index])
		assigned[v.Index] = true
	}

	for i, ok := range assigned {
		if !ok {
			results[i] = domain.ScoredResult{
				Listing:  batch[i],
				Category: domain.CategoryOther,
				Priority: domain.PriorityLow,
			}
		}
	}
	return results, nil
}

func verdictToResult(v batchVerdict, l domain.Listing) domain.ScoredResult {
	category := domain.Category(v.Category)
	switch category {
	case domain.CategoryFlooring, domain.CategoryAssembly, domain.CategoryHandover, domain.CategoryOther:
	default:
		category = domain.CategoryOther
	}

	priority := domain.Priority(v.Priority)
	switch priority {
	case domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
	default:
		priority = domain.PriorityLow
	}

	return domain.ScoredResult{
		Listing:      l,
		TotalScore:   clamp(v.ScoreTotal, 0, 100),
		RegionScore:  clamp(v.ScoreRegion, 0, 30),
		ServiceScore: clamp(v.ScoreService, 0, 40),
		QualityScore: clamp(v.ScoreQuality, 0, 30),
		Category:     category,
		Priority:     priority,
		Rationale:    v.Rationale,
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
