package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Susa-Sek/se-handwerk/internal/domain"
)

var parseNow = time.Date(2026, 8, 25, 18, 0, 0, 0, time.Local)

func TestParsePostedAt(t *testing.T) {
	tests := []struct {
		text string
		want time.Time
	}{
		{"Heute, 14:30", time.Date(2026, 8, 25, 14, 30, 0, 0, time.Local)},
		{"Heute", parseNow},
		{"Gestern, 09:00", time.Date(2026, 8, 24, 9, 0, 0, 0, time.Local)},
		{"Gestern", time.Date(2026, 8, 24, 12, 0, 0, 0, time.Local)},
		{"Vor 2 Std.", parseNow.Add(-2 * time.Hour)},
		{"vor 5 Stunden", parseNow.Add(-5 * time.Hour)},
		{"25.01.2025", time.Date(2025, 1, 25, 12, 0, 0, 0, time.Local)},
		{"25.01.25", time.Date(2025, 1, 25, 12, 0, 0, 0, time.Local)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := ParsePostedAt(tt.text, parseNow)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePostedAt_Unparsable(t *testing.T) {
	for _, text := range []string{"", "  ", "irgendwann", "31.02.2025"} {
		t.Run(text, func(t *testing.T) {
			_, ok := ParsePostedAt(text, parseNow)
			assert.False(t, ok)
		})
	}
}

func TestFreshWithin(t *testing.T) {
	tests := []struct {
		name     string
		postedAt string
		maxAge   time.Duration
		want     bool
	}{
		{"fresh listing", "Heute, 16:00", 4 * time.Hour, true},
		{"too old", "Gestern, 09:00", 4 * time.Hour, false},
		{"unparsable excludes", "???", 4 * time.Hour, false},
		{"zero max age disables filter", "???", 0, true},
		{"exactly at boundary", "Heute, 14:00", 4 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := domain.Listing{PostedAt: tt.postedAt}
			assert.Equal(t, tt.want, FreshWithin(l, tt.maxAge, parseNow))
		})
	}
}
