package store

import (
	"fmt"
	"time"
)

// PlatformStats aggregates scrape outcomes per source platform.
type PlatformStats struct {
	Platform string `db:"platform"`
	Scrapes  int    `db:"scrapes"`
	Results  int    `db:"results"`
	Relevant int    `db:"relevant"`
}

// TermStats aggregates scrape outcomes per search term.
type TermStats struct {
	SearchTerm string `db:"search_term"`
	Scrapes    int    `db:"scrapes"`
	Results    int    `db:"results"`
	Relevant   int    `db:"relevant"`
}

// LogScrape records the outcome of one search on one platform.
func (s *Store) LogScrape(platform, searchTerm string, results, relevant int) error {
	_, err := s.db.Exec(`
		INSERT INTO scrape_log (platform, search_term, results, relevant)
		VALUES (?, ?, ?, ?)`,
		platform, searchTerm, results, relevant)
	if err != nil {
		return fmt.Errorf("log scrape: %w", err)
	}
	return nil
}

// PlatformStatsSince aggregates the scrape log per platform over the last
// given number of days.
func (s *Store) PlatformStatsSince(days int) ([]PlatformStats, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var rows []PlatformStats
	err := s.db.Select(&rows, `
		SELECT platform,
		       COUNT(*)      AS scrapes,
		       SUM(results)  AS results,
		       SUM(relevant) AS relevant
		FROM scrape_log
		WHERE created_at >= ?
		GROUP BY platform`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("platform stats: %w", err)
	}
	return rows, nil
}

// TermStatsSince aggregates the scrape log per search term over the last
// given number of days.
func (s *Store) TermStatsSince(days int) ([]TermStats, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	var rows []TermStats
	err := s.db.Select(&rows, `
		SELECT search_term,
		       COUNT(*)      AS scrapes,
		       SUM(results)  AS results,
		       SUM(relevant) AS relevant
		FROM scrape_log
		WHERE created_at >= ?
		GROUP BY search_term`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("term stats: %w", err)
	}
	return rows, nil
}

// SaveMetric upserts one aggregated metric value for a day.
func (s *Store) SaveMetric(metricType, key, day string, count, relevant int, rate float64) error {
	_, err := s.db.Exec(`
		INSERT INTO metrics (metric_type, key, day, count, relevant, rate)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(metric_type, key, day) DO UPDATE SET
			count    = excluded.count,
			relevant = excluded.relevant,
			rate     = excluded.rate`,
		metricType, key, day, count, relevant, rate)
	if err != nil {
		return fmt.Errorf("save metric: %w", err)
	}
	return nil
}

// LogAction appends an entry to the agent action audit log.
func (s *Store) LogAction(agent, action, details string) error {
	_, err := s.db.Exec(`
		INSERT INTO action_log (agent, action, details)
		VALUES (?, ?, ?)`,
		agent, action, details)
	if err != nil {
		return fmt.Errorf("log action: %w", err)
	}
	return nil
}
