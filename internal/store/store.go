// Package store persists listings, scrape logs, learning metrics and pending
// operator decisions in a single SQLite database.
package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/Susa-Sek/se-handwerk/internal/config"
	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	url_hash       TEXT UNIQUE NOT NULL,
	url            TEXT NOT NULL,
	title          TEXT NOT NULL,
	description    TEXT,
	location       TEXT,
	source         TEXT NOT NULL,
	category       TEXT,
	score          INTEGER DEFAULT 0,
	priority       TEXT,
	status         TEXT DEFAULT 'new',
	response_draft TEXT,
	found_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_listings_url_hash ON listings(url_hash);
CREATE INDEX IF NOT EXISTS idx_listings_status   ON listings(status);
CREATE INDEX IF NOT EXISTS idx_listings_found_at ON listings(found_at);

CREATE TABLE IF NOT EXISTS scrape_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	platform    TEXT NOT NULL,
	search_term TEXT NOT NULL,
	results     INTEGER DEFAULT 0,
	relevant    INTEGER DEFAULT 0,
	created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_scrape_log_created ON scrape_log(created_at);

CREATE TABLE IF NOT EXISTS metrics (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	metric_type TEXT NOT NULL,
	key         TEXT NOT NULL,
	day         TEXT NOT NULL,
	count       INTEGER DEFAULT 0,
	relevant    INTEGER DEFAULT 0,
	rate        REAL DEFAULT 0,
	UNIQUE(metric_type, key, day)
);

CREATE TABLE IF NOT EXISTS decisions (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	title       TEXT NOT NULL,
	payload     TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'pending',
	created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	resolved_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS action_log (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	agent      TEXT NOT NULL,
	action     TEXT NOT NULL,
	details    TEXT,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Store is the SQLite-backed persistence layer. Safe for concurrent use;
// sqlite serializes writers through a single connection.
type Store struct {
	db  *sqlx.DB
	log logger.Logger
}

// New opens (and if needed creates) the database at the configured path.
func New(cfg config.DatabaseConfig, log logger.Logger) (*Store, error) {
	db, err := sqlx.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init database schema: %w", err)
	}

	log.Info("database initialized", logger.String("path", cfg.Path))
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
