package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Susa-Sek/se-handwerk/internal/domain"
)

var (
	hoursAgoPattern  = regexp.MustCompile(`(?i)vor\s+(\d+)\s*(?:std\.?|stunden?)`)
	clockPattern     = regexp.MustCompile(`(\d{1,2})\s*:\s*(\d{2})`)
	datePattern      = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})\.(\d{2,4})`)
	todayPattern     = regexp.MustCompile(`(?i)heute`)
	yesterdayPattern = regexp.MustCompile(`(?i)gestern`)
)

// ParsePostedAt parses the posting-age strings German classified sites show,
// like "Heute, 14:30", "Gestern, 09:00", "Vor 2 Std." or "25.01.2025".
// Returns false when the text is not parsable.
func ParsePostedAt(text string, now time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	if m := hoursAgoPattern.FindStringSubmatch(text); m != nil {
		hours, _ := strconv.Atoi(m[1])
		return now.Add(-time.Duration(hours) * time.Hour), true
	}

	if todayPattern.MatchString(text) {
		if m := clockPattern.FindStringSubmatch(text); m != nil {
			return atClock(now, m), true
		}
		return now, true
	}

	if yesterdayPattern.MatchString(text) {
		yesterday := now.AddDate(0, 0, -1)
		if m := clockPattern.FindStringSubmatch(text); m != nil {
			return atClock(yesterday, m), true
		}
		return time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(),
			12, 0, 0, 0, now.Location()), true
	}

	if m := datePattern.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
		t := time.Date(year, time.Month(month), day, 12, 0, 0, 0, now.Location())
		// time.Date normalizes out-of-range values (31.02 becomes 03.03);
		// treat those as unparsable.
		if t.Day() != day || t.Month() != time.Month(month) {
			return time.Time{}, false
		}
		return t, true
	}

	return time.Time{}, false
}

func atClock(day time.Time, m []string) time.Time {
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// FreshWithin reports whether the listing was posted within maxAge of now.
// A zero maxAge disables the filter. An unparsable posting age excludes the
// listing: only demonstrably fresh leads are worth contacting.
func FreshWithin(l domain.Listing, maxAge time.Duration, now time.Time) bool {
	if maxAge <= 0 {
		return true
	}
	posted, ok := ParsePostedAt(l.PostedAt, now)
	if !ok {
		return false
	}
	return !posted.Before(now.Add(-maxAge))
}
