// Package llm wraps the Anthropic API for the optional model-based scoring
// layer and the suggestion agents. All calls go through one shared client
// that enforces a per-minute request limit and a daily cost budget.
package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

// ErrBudgetExhausted is returned once the estimated daily spend reaches the
// configured limit. Callers fall back to the rule-based path.
var ErrBudgetExhausted = errors.New("daily llm cost limit reached")

// Claude Haiku pricing per token in USD, used for a rough budget estimate.
const (
	inputTokenUSD  = 0.0000008
	outputTokenUSD = 0.000004
	usdToEUR       = 0.93
)

const jsonModeSuffix = "\n\nAntworte AUSSCHLIESSLICH mit validem JSON. Kein Text davor oder danach."

// AgentUsage tracks token consumption for one named agent.
type AgentUsage struct {
	InputTokens  int64
	OutputTokens int64
	Requests     int
}

// Request is one prompt to the model.
type Request struct {
	System    string
	Prompt    string
	Model     string
	Agent     string
	MaxTokens int64
	JSONMode  bool
}

// Client is the shared Anthropic client. Safe for concurrent use.
type Client struct {
	cfg config.LLMConfig
	api *anthropic.Client
	log logger.Logger

	mu           sync.Mutex
	requestTimes []time.Time
	usage        map[string]*AgentUsage
	trackingDay  string
}

// NewClient builds the client. Without an API key (or when disabled) the
// client reports unavailable and every Ask fails fast; the caller's
// rule-based fallback takes over.
func NewClient(cfg config.LLMConfig, log logger.Logger) *Client {
	c := &Client{
		cfg:   cfg,
		log:   log,
		usage: make(map[string]*AgentUsage),
	}

	if !cfg.Enabled || cfg.APIKey == "" {
		if cfg.Enabled {
			log.Warn("ANTHROPIC_API_KEY not set, llm layer disabled")
		}
		return c
	}

	api := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	c.api = &api
	return c
}

// Available reports whether model calls can be made.
func (c *Client) Available() bool {
	return c != nil && c.api != nil
}

// Ask sends one prompt and returns the text answer. In JSON mode the system
// prompt is extended and the answer is reduced to its JSON payload.
func (c *Client) Ask(ctx context.Context, req Request) (string, error) {
	if !c.Available() {
		return "", errors.New("llm client not available")
	}

	if err := c.waitForSlot(ctx); err != nil {
		return "", err
	}
	if c.budgetExhausted() {
		c.log.Warn("daily llm cost limit reached, skipping request",
			logger.Float64("limit_eur", c.cfg.DailyCostEUR))
		return "", ErrBudgetExhausted
	}

	model := req.Model
	if model == "" {
		model = c.cfg.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = int64(c.cfg.MaxTokens)
	}
	system := req.System
	if req.JSONMode {
		system += jsonModeSuffix
	}

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm request (%s): %w", req.Agent, err)
	}

	c.trackUsage(req.Agent, msg.Usage.InputTokens, msg.Usage.OutputTokens)

	var answer string
	for _, block := range msg.Content {
		if block.Type == "text" {
			answer += block.Text
		}
	}

	c.log.Debug("llm request ok",
		logger.String("agent", req.Agent),
		logger.Int64("tokens", msg.Usage.InputTokens+msg.Usage.OutputTokens))

	if req.JSONMode {
		answer = ExtractJSON(answer)
	}
	return answer, nil
}

// UsageToday returns the per-agent token consumption for the current day.
func (c *Client) UsageToday() map[string]AgentUsage {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetIfNewDayLocked()
	out := make(map[string]AgentUsage, len(c.usage))
	for name, u := range c.usage {
		out[name] = *u
	}
	return out
}

// waitForSlot enforces the sliding-window per-minute request limit.
func (c *Client) waitForSlot(ctx context.Context) error {
	for {
		c.mu.Lock()
		now := time.Now()
		fresh := c.requestTimes[:0]
		for _, ts := range c.requestTimes {
			if now.Sub(ts) < time.Minute {
				fresh = append(fresh, ts)
			}
		}
		c.requestTimes = fresh

		if len(c.requestTimes) < c.cfg.MaxPerMinute {
			c.requestTimes = append(c.requestTimes, now)
			c.mu.Unlock()
			return nil
		}
		wait := time.Minute - now.Sub(c.requestTimes[0])
		c.mu.Unlock()

		c.log.Debug("llm rate limit, waiting", logger.Duration("wait", wait))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) trackUsage(agent string, in, out int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetIfNewDayLocked()
	u, ok := c.usage[agent]
	if !ok {
		u = &AgentUsage{}
		c.usage[agent] = u
	}
	u.InputTokens += in
	u.OutputTokens += out
	u.Requests++
}

func (c *Client) budgetExhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetIfNewDayLocked()
	var in, out int64
	for _, u := range c.usage {
		in += u.InputTokens
		out += u.OutputTokens
	}
	costEUR := (float64(in)*inputTokenUSD + float64(out)*outputTokenUSD) * usdToEUR
	return costEUR >= c.cfg.DailyCostEUR
}

func (c *Client) resetIfNewDayLocked() {
	today := time.Now().Format("2006-01-02")
	if c.trackingDay != today {
		c.usage = make(map[string]*AgentUsage)
		c.trackingDay = today
	}
}
