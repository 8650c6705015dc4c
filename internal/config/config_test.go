package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "{}")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Scoring.RegionWeight)
	assert.Equal(t, 40, cfg.Scoring.ServiceWeight)
	assert.Equal(t, 70, cfg.Scoring.ThresholdHigh)
	assert.Equal(t, 40, cfg.Scoring.ThresholdMedium)
	assert.Equal(t, 70.0, cfg.Geo.RadiusKM)
	assert.Equal(t, 30*time.Minute, cfg.Scraper.Interval)
	assert.Equal(t, "20:00", cfg.Telegram.SummaryTime)
	assert.NotEmpty(t, cfg.Exclusions.Services)
	assert.NotEmpty(t, cfg.Categories)
	assert.NotEmpty(t, cfg.Regions)
	// Declaration order carries meaning for tie-breaking.
	assert.Equal(t, "flooring", cfg.Categories[0].Name)
	assert.Equal(t, "heilbronn", cfg.Regions[0].Name)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
scoring:
  threshold_high: 80
scraper:
  interval: 1h
regions:
  - name: testland
    score: 12
    keywords: [testland]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 80, cfg.Scoring.ThresholdHigh)
	assert.Equal(t, 40, cfg.Scoring.ThresholdMedium) // untouched default
	assert.Equal(t, time.Hour, cfg.Scraper.Interval)
	require.Len(t, cfg.Regions, 1)
	assert.Equal(t, "testland", cfg.Regions[0].Name)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: from-file.db
`)
	t.Setenv("DATABASE_PATH", "from-env.db")
	t.Setenv("TELEGRAM_CHAT_ID", "12345")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.Database.Path)
	assert.Equal(t, int64(12345), cfg.Telegram.ChatID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok-123")

	cfg, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "se-handwerk.db", cfg.Database.Path)
	assert.Equal(t, "tok-123", cfg.Telegram.Token)
}
