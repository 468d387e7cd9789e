package nasa

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by every endpoint.
const DateLayout = "2006-01-02"

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// FormatDate renders t as YYYY-MM-DD in UTC. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// Today returns the current UTC date.
func Today() string {
	return FormatDate(time.Now())
}

// DaysAgo returns the UTC date n days before today.
func DaysAgo(n int) string {
	return FormatDate(time.Now().AddDate(0, 0, -n))
}

// IsImageURL reports whether u looks like a direct link to an image.
func IsImageURL(u string) bool {
	if u == "" {
		return false
	}
	lower := strings.ToLower(u)
	for _, ext := range imageExtensions {
		if strings.Contains(lower, ext) {
			return true
		}
	}
	return false
}
