package validation

import (
	"strings"
	"time"
)

// DefaultFreshnessMaxAge is how old a document date may be before it is reported stale.
const DefaultFreshnessMaxAge = 24 * time.Hour

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// IsFresh reports whether timestamp (ISO-8601, "Z" or offset, or date-only) is younger than maxAge
// relative to now. Empty or unparsable timestamps are not fresh. Timestamps without a zone are UTC.
func IsFresh(timestamp string, now time.Time, maxAge time.Duration) bool {
	t, ok := parseTimestamp(timestamp)
	if !ok {
		return false
	}
	return now.Sub(t) < maxAge
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
