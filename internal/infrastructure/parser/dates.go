package parser

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// pageDateLayout is the byline format of topic-crawled article pages.
const pageDateLayout = "January 2, 2006"

// DateFromURL extracts a /YYYY/M/D/ date from a link path.
func DateFromURL(link string) (time.Time, bool) {
	u, err := url.Parse(link)
	if err != nil {
		return time.Time{}, false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(segments); i++ {
		if len(segments[i]) != 4 {
			continue
		}
		year, err1 := strconv.Atoi(segments[i])
		month, err2 := strconv.Atoi(segments[i+1])
		day, err3 := strconv.Atoi(segments[i+2])
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if t.Day() != day {
			continue
		}
		return t, true
	}

	return time.Time{}, false
}

// IsStale reports whether an article is older than maxAge at now.
// A zero publish date counts as stale.
func IsStale(published, now time.Time, maxAge time.Duration) bool {
	if published.IsZero() {
		return true
	}
	if maxAge <= 0 {
		return false
	}
	return published.Before(now.Add(-maxAge))
}

// IsStaleDay is IsStale for date-only values such as URL and byline dates. The window
// is measured in whole UTC days so the cutoff does not move with the time of the run.
func IsStaleDay(day, now time.Time, maxAge time.Duration) bool {
	if day.IsZero() {
		return true
	}
	if maxAge <= 0 {
		return false
	}
	cutoff := startOfDay(now.Add(-maxAge))
	return startOfDay(day).Before(cutoff)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parsePageDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(pageDateLayout, text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
