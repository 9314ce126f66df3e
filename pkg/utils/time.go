package utils

import "time"

// sortableTimeFormat is RFC3339 with fixed-width fractional seconds so that
// lexicographic order matches chronological order in range keys.
const sortableTimeFormat = "2006-01-02T15:04:05.000000000Z"

// NowRFC3339 returns the current time in RFC3339 format
func NowRFC3339() string {
	return time.Now().Format(time.RFC3339)
}

// ParseRFC3339 parses a time string in RFC3339 format
func ParseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// SortableTimestamp formats a time for use in lexicographically sorted keys
func SortableTimestamp(t time.Time) string {
	return t.UTC().Format(sortableTimeFormat)
}

// ParseSortableTimestamp parses a timestamp produced by SortableTimestamp
func ParseSortableTimestamp(s string) (time.Time, error) {
	return time.Parse(sortableTimeFormat, s)
}

// DayWindow returns the local-time bounds [start of day, start of next day)
// containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
