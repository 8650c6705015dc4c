package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Susa-Sek/se-handwerk/internal/domain"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

// StoredListing is a persisted listing row.
type StoredListing struct {
	ID            int64           `db:"id"`
	URLHash       string          `db:"url_hash"`
	URL           string          `db:"url"`
	Title         string          `db:"title"`
	Description   string          `db:"description"`
	Location      string          `db:"location"`
	Source        domain.Source   `db:"source"`
	Category      domain.Category `db:"category"`
	Score         int             `db:"score"`
	Priority      domain.Priority `db:"priority"`
	Status        domain.Status   `db:"status"`
	ResponseDraft string          `db:"response_draft"`
	FoundAt       time.Time       `db:"found_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// DayStats summarizes one day of stored listings.
type DayStats struct {
	Total    int `db:"total"`
	High     int `db:"high"`
	Medium   int `db:"medium"`
	Low      int `db:"low"`
	Answered int `db:"answered"`
}

// Exists reports whether a listing with the given URL hash is already known.
func (s *Store) Exists(urlHash string) (bool, error) {
	var one int
	err := s.db.Get(&one, "SELECT 1 FROM listings WHERE url_hash = ?", urlHash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check listing exists: %w", err)
	}
	return true, nil
}

// SaveResult inserts a scored listing. Returns false when the listing was
// already known (dedup by URL hash).
func (s *Store) SaveResult(res domain.ScoredResult) (bool, error) {
	l := res.Listing
	hash := l.URLHash()

	known, err := s.Exists(hash)
	if err != nil {
		return false, err
	}
	if known {
		s.log.Debug("listing already known", logger.String("title", l.Title))
		return false, nil
	}

	_, err = s.db.Exec(`
		INSERT INTO listings
			(url_hash, url, title, description, location, source,
			 category, score, priority, status, response_draft)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		hash, l.URL, l.Title, l.Description, l.Location, l.Source,
		res.Category, res.TotalScore, res.Priority, domain.StatusNew, res.ResponseDraft)
	if err != nil {
		return false, fmt.Errorf("save listing: %w", err)
	}

	s.log.Info("new listing saved",
		logger.String("title", l.Title),
		logger.Int("score", res.TotalScore))
	return true, nil
}

// UpdateStatus changes the operator-facing status of a listing.
func (s *Store) UpdateStatus(urlHash string, status domain.Status) error {
	_, err := s.db.Exec(`
		UPDATE listings
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE url_hash = ?`,
		status, urlHash)
	if err != nil {
		return fmt.Errorf("update listing status: %w", err)
	}
	return nil
}

// TodayStats returns the per-priority counts of listings found today.
func (s *Store) TodayStats() (DayStats, error) {
	var stats DayStats
	err := s.db.Get(&stats, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN priority = 'high'   THEN 1 ELSE 0 END), 0) AS high,
			COALESCE(SUM(CASE WHEN priority = 'medium' THEN 1 ELSE 0 END), 0) AS medium,
			COALESCE(SUM(CASE WHEN priority = 'low'    THEN 1 ELSE 0 END), 0) AS low,
			COALESCE(SUM(CASE WHEN status = 'answered' THEN 1 ELSE 0 END), 0) AS answered
		FROM listings
		WHERE DATE(found_at) = DATE('now')`)
	if err != nil {
		return DayStats{}, fmt.Errorf("today stats: %w", err)
	}
	return stats, nil
}

// TopToday returns today's highest-scoring listings.
func (s *Store) TopToday(limit int) ([]StoredListing, error) {
	var rows []StoredListing
	err := s.db.Select(&rows, `
		SELECT id, url_hash, url, title, description, location, source,
		       category, score, priority, status, response_draft,
		       found_at, updated_at
		FROM listings
		WHERE DATE(found_at) = DATE('now')
		ORDER BY score DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("top listings: %w", err)
	}
	return rows, nil
}

// Cleanup deletes listings older than the given number of days and returns
// how many rows were removed.
func (s *Store) Cleanup(days int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -days)
	res, err := s.db.Exec("DELETE FROM listings WHERE found_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup listings: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.log.Info("cleanup removed old listings", logger.Int64("count", n))
	}
	return n, nil
}
