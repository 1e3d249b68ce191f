package planner

import "time"

// MonthBounds returns the first and last day of the month containing t, both
// truncated to midnight UTC. All plan scheduling works in whole dates.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// dateKey is the canonical string form used to dedupe occurrence dates.
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// combineDateTime merges a whole date with a "HH:MM" clock time. A malformed
// clock time falls back to midnight; schedule rows are validated on intake so
// that only happens for hand-edited data.
func combineDateTime(date time.Time, clock string) time.Time {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return date
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
}
