package scrape

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

// Browser user agents rotated per request to avoid trivial blocking.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:127.0) Gecko/20100101 Firefox/127.0",
}

const rateLimitBackoff = 5 * time.Second

// Fetcher issues polite HTTP GETs: a random delay before each request, a
// rotated user agent, and bounded retries with a longer wait on 429.
type Fetcher struct {
	cfg    config.ScraperConfig
	client *http.Client
	log    logger.Logger
}

// NewFetcher builds a fetcher from the shared scraper configuration.
func NewFetcher(cfg config.ScraperConfig, log logger.Logger) *Fetcher {
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// Get fetches a URL and returns the response body. A 403 aborts immediately
// (retrying a block only makes it worse); other failures retry up to the
// configured maximum.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		if err := f.politeDelay(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := f.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}

		f.log.Warn("request failed",
			logger.String("url", url),
			logger.Int("attempt", attempt),
			logger.Error(err))
	}

	return nil, fmt.Errorf("all %d attempts failed for %s: %w", f.cfg.MaxRetries, url, lastErr)
}

func (f *Fetcher) getOnce(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, fmt.Errorf("read body: %w", err)
		}
		return data, false, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		f.log.Warn("rate limited, backing off", logger.String("url", url))
		select {
		case <-time.After(rateLimitBackoff):
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
		return nil, true, fmt.Errorf("rate limited (429)")

	case resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("access denied (403) for %s", url)

	default:
		return nil, true, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}
}

// politeDelay sleeps a random duration between the configured bounds.
func (f *Fetcher) politeDelay(ctx context.Context) error {
	if f.cfg.MaxDelay <= 0 {
		return nil
	}
	delay := f.cfg.MinDelay
	if span := f.cfg.MaxDelay - f.cfg.MinDelay; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
