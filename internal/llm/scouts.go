package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
	"github.com/Susa-Sek/se-handwerk/internal/store"
)

const termScoutSystemPrompt = `Du bist ein Such-Stratege für SE Handwerk, einen Handwerksbetrieb in Heilbronn
(Bodenarbeiten, Möbelmontage, Wohnungsübergabe).

Deine Aufgabe: Schlage neue deutsche Suchbegriffe für Kleinanzeigen-Portale vor
und markiere erfolglose bestehende Begriffe zur Deaktivierung.

Antworte IMMER als JSON:
{
  "suggestions": [
    {"term": "parkett abschleifen", "action": "add", "rationale": "Angrenzende Leistung mit wenig Konkurrenz"},
    {"term": "xyz", "action": "disable", "rationale": "Keine relevanten Treffer"}
  ]
}

Regeln:
- Nur Begriffe, die Privatpersonen tatsächlich in Gesuchen verwenden
- Keine Duplikate zu den bestehenden Begriffen
- Maximal 5 Vorschläge`

const platformScoutSystemPrompt = `Du bist ein Plattform-Scout für SE Handwerk, einen Handwerksbetrieb in Heilbronn
(Bodenarbeiten, Möbelmontage, Wohnungsübergabe; Region Heilbronn + 70 km).

Deine Aufgabe: Finde deutsche Online-Plattformen, auf denen Privatpersonen
Handwerker-Aufträge ausschreiben.

Antworte IMMER als JSON:
{
  "platforms": [
    {
      "name": "kurzname",
      "url": "https://...",
      "description": "Was die Plattform bietet",
      "relevance": "high/medium/low",
      "search_hint": "Wie die Suche funktioniert (URL-Muster wenn bekannt)"
    }
  ]
}

Regeln:
- Nur deutsche Plattformen für den deutschen Markt
- Nur Plattformen mit Aufträgen/Gesuchen, keine reinen Firmenseiten
- Keine Duplikate zu den bekannten Plattformen`

// Decision kinds persisted for operator review.
const (
	DecisionKindSearchTerm = "search_term"
	DecisionKindPlatform   = "platform"
)

// TermScout proposes new or retired search terms based on recent scrape
// statistics. Proposals are persisted as pending decisions, never applied
// automatically.
type TermScout struct {
	client *Client
	store  *store.Store
	cfg    config.LLMConfig
	log    logger.Logger
}

// NewTermScout builds the search-term scout.
func NewTermScout(client *Client, st *store.Store, cfg config.LLMConfig, log logger.Logger) *TermScout {
	return &TermScout{client: client, store: st, cfg: cfg, log: log}
}

// Propose asks the strategy model for term suggestions and persists them.
func (t *TermScout) Propose(ctx context.Context, currentTerms []string, stats []store.TermStats) ([]domain.SearchTermSuggestion, error) {
	if !t.client.Available() {
		return nil, nil
	}

	answer, err := t.client.Ask(ctx, Request{
		System:   termScoutSystemPrompt,
		Prompt:   buildTermPrompt(currentTerms, stats),
		Model:    t.cfg.StrategyModel,
		Agent:    "term_scout",
		JSONMode: true,
	})
	if err != nil {
		return nil, fmt.Errorf("term scout: %w", err)
	}

	var parsed struct {
		Suggestions []domain.SearchTermSuggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(answer), &parsed); err != nil {
		return nil, fmt.Errorf("parse term suggestions: %w", err)
	}

	for _, s := range parsed.Suggestions {
		payload, _ := json.Marshal(s)
		title := fmt.Sprintf("Suchbegriff %s: %s", s.Action, s.Term)
		if _, err := t.store.CreateDecision(DecisionKindSearchTerm, title, string(payload)); err != nil {
			t.log.Error("persist term suggestion failed", logger.Error(err))
		}
	}

	if err := t.store.LogAction("term_scout", "proposed",
		fmt.Sprintf("%d suggestions", len(parsed.Suggestions))); err != nil {
		t.log.Warn("action log failed", logger.Error(err))
	}

	return parsed.Suggestions, nil
}

func buildTermPrompt(currentTerms []string, stats []store.TermStats) string {
	var b strings.Builder
	b.WriteString("Bestehende Suchbegriffe:\n")
	for _, term := range currentTerms {
		fmt.Fprintf(&b, "- %s\n", term)
	}
	if len(stats) > 0 {
		b.WriteString("\nErgebnisse der letzten 14 Tage:\n")
		for _, s := range stats {
			fmt.Fprintf(&b, "- %q: %d Suchen, %d Treffer, %d relevant\n",
				s.SearchTerm, s.Scrapes, s.Results, s.Relevant)
		}
	}
	return b.String()
}

// PlatformScout proposes new source platforms for operator approval.
type PlatformScout struct {
	client *Client
	store  *store.Store
	cfg    config.LLMConfig
	log    logger.Logger
}

// NewPlatformScout builds the platform scout.
func NewPlatformScout(client *Client, st *store.Store, cfg config.LLMConfig, log logger.Logger) *PlatformScout {
	return &PlatformScout{client: client, store: st, cfg: cfg, log: log}
}

// Propose asks the strategy model for new platforms and persists them.
func (p *PlatformScout) Propose(ctx context.Context, knownPlatforms []string) ([]domain.PlatformSuggestion, error) {
	if !p.client.Available() {
		return nil, nil
	}

	prompt := "Bekannte Plattformen:\n- " + strings.Join(knownPlatforms, "\n- ")
	answer, err := p.client.Ask(ctx, Request{
		System:   platformScoutSystemPrompt,
		Prompt:   prompt,
		Model:    p.cfg.StrategyModel,
		Agent:    "platform_scout",
		JSONMode: true,
	})
	if err != nil {
		return nil, fmt.Errorf("platform scout: %w", err)
	}

	var parsed struct {
		Platforms []platformAnswer `json:"platforms"`
	}
	if err := json.Unmarshal([]byte(answer), &parsed); err != nil {
		return nil, fmt.Errorf("parse platform suggestions: %w", err)
	}

	known := make(map[string]bool, len(knownPlatforms))
	for _, name := range knownPlatforms {
		known[strings.ToLower(name)] = true
	}

	var suggestions []domain.PlatformSuggestion
	for _, pa := range parsed.Platforms {
		if known[strings.ToLower(pa.Name)] {
			continue
		}
		s := domain.PlatformSuggestion{
			Name:        pa.Name,
			URL:         pa.URL,
			Description: pa.Description,
			Relevance:   pa.Relevance,
			SearchHint:  pa.SearchHint,
		}
		suggestions = append(suggestions, s)

		payload, _ := json.Marshal(s)
		title := "Neue Plattform: " + s.Name
		if _, err := p.store.CreateDecision(DecisionKindPlatform, title, string(payload)); err != nil {
			p.log.Error("persist platform suggestion failed", logger.Error(err))
		}
	}

	if err := p.store.LogAction("platform_scout", "proposed",
		fmt.Sprintf("%d platforms", len(suggestions))); err != nil {
		p.log.Warn("action log failed", logger.Error(err))
	}

	return suggestions, nil
}

type platformAnswer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Relevance   string `json:"relevance"`
	SearchHint  string `json:"search_hint"`
}
