package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

const fallbackPostcode = "74072" // Heilbronn

// Kleinanzeigen scrapes kleinanzeigen.de job requests ("Gesuche"), the main
// source of leads.
type Kleinanzeigen struct {
	cfg     config.KleinanzeigenConfig
	fetcher *Fetcher
	log     logger.Logger
}

// NewKleinanzeigen builds the scraper.
func NewKleinanzeigen(cfg config.KleinanzeigenConfig, fetcher *Fetcher, log logger.Logger) *Kleinanzeigen {
	return &Kleinanzeigen{cfg: cfg, fetcher: fetcher, log: log}
}

// Name implements Scraper.
func (k *Kleinanzeigen) Name() domain.Source {
	return domain.SourceKleinanzeigen
}

// Search implements Scraper.
func (k *Kleinanzeigen) Search(ctx context.Context, term, region string) ([]domain.Listing, error) {
	postcode, ok := k.cfg.RegionPostcodes[region]
	if !ok {
		postcode = fallbackPostcode
	}

	searchURL := k.buildURL(term, postcode)
	body, err := k.fetcher.Get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("kleinanzeigen search %q: %w", term, err)
	}

	listings, err := k.parseResults(body)
	if err != nil {
		return nil, fmt.Errorf("kleinanzeigen parse %q: %w", term, err)
	}

	k.log.Debug("kleinanzeigen results parsed",
		logger.String("term", term),
		logger.Int("count", len(listings)))
	return listings, nil
}

// buildURL assembles the search URL: postcode-scoped requests-only search
// with a radius, e.g. /s-74072/anzeige:gesuche/laminat+verlegen/k0r100.
func (k *Kleinanzeigen) buildURL(term, postcode string) string {
	return fmt.Sprintf("%s/s-%s/anzeige:gesuche/%s/k0r%d",
		k.cfg.BaseURL, postcode, url.QueryEscape(term), k.cfg.RadiusKM)
}

func (k *Kleinanzeigen) parseResults(body []byte) ([]domain.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	items := doc.Find("article.aditem")
	if items.Length() == 0 {
		items = doc.Find("li.ad-listitem article")
	}

	var listings []domain.Listing
	items.Each(func(_ int, item *goquery.Selection) {
		if l, ok := k.parseItem(item); ok {
			listings = append(listings, l)
		}
	})
	return listings, nil
}

func (k *Kleinanzeigen) parseItem(item *goquery.Selection) (domain.Listing, bool) {
	title := item.Find("a.ellipsis, h2.text-module-begin a, [data-testid='ad-title']").First()
	if title.Length() == 0 {
		return domain.Listing{}, false
	}

	link, _ := title.Attr("href")
	if link == "" {
		return domain.Listing{}, false
	}
	if !strings.HasPrefix(link, "http") {
		link = k.cfg.BaseURL + link
	}

	l := domain.Listing{
		URL:    link,
		Title:  strings.TrimSpace(title.Text()),
		Source: domain.SourceKleinanzeigen,
		Description: strings.TrimSpace(item.Find(
			"p.aditem-main--middle--description, [data-testid='ad-description']").First().Text()),
		Location: strings.TrimSpace(item.Find(
			".aditem-main--top--left, [data-testid='ad-location']").First().Text()),
		Price: strings.TrimSpace(item.Find(
			".aditem-main--middle--price-shipping--price, [data-testid='ad-price']").First().Text()),
		PostedAt: strings.TrimSpace(item.Find(
			".aditem-main--top--right, [data-testid='ad-date']").First().Text()),
		FoundAt: time.Now(),
	}
	return l, true
}
