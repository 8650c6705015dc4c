package geo

import (
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/Susa-Sek/se-handwerk/internal/logger"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS geo_cache (
	token      TEXT PRIMARY KEY,
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	cached_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_geo_cache_cached_at ON geo_cache(cached_at);
`

// coordCache is a SQLite-backed coordinate cache keyed by the extracted
// location token. Entries expire after a configured number of days and are
// purged on open.
type coordCache struct {
	db     *sqlx.DB
	expiry time.Duration
	log    logger.Logger

	mu sync.Mutex
}

type cacheRow struct {
	Latitude  float64   `db:"latitude"`
	Longitude float64   `db:"longitude"`
	CachedAt  time.Time `db:"cached_at"`
}

func newCoordCache(path string, expiryDays int, log logger.Logger) (*coordCache, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open geo cache %s: %w", path, err)
	}
	// sqlite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent scoring.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init geo cache schema: %w", err)
	}

	c := &coordCache{
		db:     db,
		expiry: time.Duration(expiryDays) * 24 * time.Hour,
		log:    log,
	}
	c.purgeExpired()
	return c, nil
}

func (c *coordCache) get(token string) (lat, lon float64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var row cacheRow
	err := c.db.Get(&row,
		"SELECT latitude, longitude, cached_at FROM geo_cache WHERE token = ?", token)
	if err != nil {
		return 0, 0, false
	}
	if time.Since(row.CachedAt) > c.expiry {
		return 0, 0, false
	}
	return row.Latitude, row.Longitude, true
}

func (c *coordCache) put(token string, lat, lon float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(`
		INSERT INTO geo_cache (token, latitude, longitude, cached_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			cached_at = excluded.cached_at`,
		token, lat, lon, time.Now().UTC())
	if err != nil {
		c.log.Warn("geo cache write failed", logger.String("token", token), logger.Error(err))
	}
}

func (c *coordCache) purgeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().UTC().Add(-c.expiry)
	res, err := c.db.Exec("DELETE FROM geo_cache WHERE cached_at < ?", cutoff)
	if err != nil {
		c.log.Warn("geo cache purge failed", logger.Error(err))
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		c.log.Debug("purged expired geo cache entries", logger.Int64("count", n))
	}
}

func (c *coordCache) close() error {
	return c.db.Close()
}
