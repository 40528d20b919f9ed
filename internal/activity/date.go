package activity

import (
	"fmt"
	"strings"
	"time"
)

// deadlineLayouts are the ISO-8601 forms accepted for timeline deadlines,
// tried in order. Zone-qualified layouts come first so an offset is never
// silently dropped.
var deadlineLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDeadline parses an ISO-8601 deadline. Naive timestamps are read as UTC.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty deadline")
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an ISO-8601 timestamp: %q", s)
}

// FormatDeadline renders a wall-clock time the way the extractors emit it
func FormatDeadline(year, month, day, hour, minute, second int) string {
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d", year, month, day, hour, minute, second)
}

// FormatDate renders a calendar date as YYYY-MM-DD
func FormatDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// ValidDateTime reports whether the components form a real calendar
// date and wall-clock time.
func ValidDateTime(year, month, day, hour, minute, second int) bool {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return false
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}
