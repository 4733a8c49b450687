// Package taskview holds the pure client-side list logic: search/date-bucket
// filtering and the manual reorder engine. Nothing in here touches the network.
package taskview

import (
	"math"
	"strings"
	"time"

	"pioneer-cli/internal/model"
)

// Buckets are the independent date-range toggles. They are not mutually
// exclusive: a task passes when it matches ANY active bucket.
type Buckets struct {
	Today      bool
	Next5Days  bool
	Next10Days bool
	Next30Days bool
}

// Any reports whether at least one bucket is active.
func (b Buckets) Any() bool {
	return b.Today || b.Next5Days || b.Next10Days || b.Next30Days
}

// Filter returns the tasks visible under the given search term and buckets.
//
// Search matches the raw term against the title case-insensitively as a
// substring; a whitespace-only term only matches titles that contain that
// whitespace. The date stage
// computes diffDays = ceil(taskDate@midnight - now@midnight) in days and keeps
// a task when no bucket is active, or when any active bucket covers diffDays.
// Past-due tasks (diffDays < 0) never match a bucket, so they are hidden as
// soon as any bucket is on. Tasks with unparseable dates are treated the same
// way: shown with no buckets active, hidden otherwise.
//
// The input slice is never mutated; with an empty filter state the result
// preserves the input order exactly.
func Filter(tasks []model.Task, searchTerm string, buckets Buckets, now time.Time) []model.Task {
	out := make([]model.Task, 0, len(tasks))

	term := strings.ToLower(searchTerm)
	today := midnight(now)

	for _, t := range tasks {
		if term != "" && !strings.Contains(strings.ToLower(t.Title), term) {
			continue
		}
		if !buckets.Any() {
			out = append(out, t)
			continue
		}
		diff, ok := diffDays(t.TodoDate, today)
		if !ok {
			continue
		}
		if matchesBucket(diff, buckets) {
			out = append(out, t)
		}
	}
	return out
}

func matchesBucket(diff int, b Buckets) bool {
	if b.Today && diff == 0 {
		return true
	}
	if b.Next5Days && diff > 0 && diff <= 5 {
		return true
	}
	if b.Next10Days && diff > 0 && diff <= 10 {
		return true
	}
	if b.Next30Days && diff > 0 && diff <= 30 {
		return true
	}
	return false
}

// diffDays parses a YYYY-MM-DD date in the local zone and returns the
// ceiling-rounded day distance from today's midnight.
func diffDays(date string, today time.Time) (int, bool) {
	parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), today.Location())
	if err != nil {
		return 0, false
	}
	d := midnight(parsed).Sub(today).Hours() / 24
	return int(math.Ceil(d)), true
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
