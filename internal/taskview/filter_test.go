package taskview

import (
	"testing"
	"time"

	"pioneer-cli/internal/model"
)

func taskOn(id, title, date string) model.Task {
	return model.Task{ID: id, Title: title, TodoDate: date}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func sameIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilter_EmptyStateReturnsInputUnchanged(t *testing.T) {
	now := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	tasks := []model.Task{
		taskOn("1", "Pay bills", "2023-12-20"), // past due
		taskOn("2", "Buy milk", "2024-01-10"),
		taskOn("3", "No date", ""),
	}

	got := Filter(tasks, "", Buckets{}, now)
	if !sameIDs(ids(got), "1", "2", "3") {
		t.Fatalf("expected input order preserved, got %v", ids(got))
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	got := Filter(nil, "milk", Buckets{Today: true}, time.Now())
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", ids(got))
	}
}

func TestFilter_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		taskOn("1", "Pay Bills", "2024-01-01"),
		taskOn("2", "Buy milk", "2024-01-01"),
	}

	got := Filter(tasks, "BILL", Buckets{}, now)
	if !sameIDs(ids(got), "1") {
		t.Fatalf("expected only task 1, got %v", ids(got))
	}
}

func TestFilter_WhitespaceTermMatchesLiterally(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		taskOn("1", "Pay bills", ""),
		taskOn("2", "Groceries", ""),
	}

	// The term is not trimmed: a lone space only matches titles containing one.
	got := Filter(tasks, " ", Buckets{}, now)
	if !sameIDs(ids(got), "1") {
		t.Fatalf("expected only the title with a space, got %v", ids(got))
	}
}

func TestFilter_PastDueHiddenUnderAnyActiveBucket(t *testing.T) {
	now := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	tasks := []model.Task{taskOn("1", "Old", "2024-01-10")}

	for name, b := range map[string]Buckets{
		"today":  {Today: true},
		"next5":  {Next5Days: true},
		"next10": {Next10Days: true},
		"next30": {Next30Days: true},
	} {
		if got := Filter(tasks, "", b, now); len(got) != 0 {
			t.Fatalf("bucket %s: expected past-due task hidden, got %v", name, ids(got))
		}
	}

	// Past due is visible only with no bucket active.
	if got := Filter(tasks, "", Buckets{}, now); !sameIDs(ids(got), "1") {
		t.Fatalf("expected past-due visible without buckets, got %v", ids(got))
	}
}

func TestFilter_TodayMatchesOnlyTodayBucket(t *testing.T) {
	now := time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)
	tasks := []model.Task{taskOn("1", "Due today", "2024-01-15")}

	if got := Filter(tasks, "", Buckets{Today: true}, now); !sameIDs(ids(got), "1") {
		t.Fatalf("expected today-task under today bucket, got %v", ids(got))
	}
	// diffDays == 0 does not fall in the strictly-positive ranges.
	if got := Filter(tasks, "", Buckets{Next5Days: true}, now); len(got) != 0 {
		t.Fatalf("expected today-task hidden under next5 bucket, got %v", ids(got))
	}
	if got := Filter(tasks, "", Buckets{}, now); !sameIDs(ids(got), "1") {
		t.Fatalf("expected today-task visible without buckets, got %v", ids(got))
	}
}

func TestFilter_BucketRangesOrTogether(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		taskOn("today", "a", "2024-01-01"),
		taskOn("in3", "b", "2024-01-04"),
		taskOn("in8", "c", "2024-01-09"),
		taskOn("in25", "d", "2024-01-26"),
		taskOn("in40", "e", "2024-02-10"),
	}

	got := Filter(tasks, "", Buckets{Today: true, Next10Days: true}, now)
	if !sameIDs(ids(got), "today", "in3", "in8") {
		t.Fatalf("expected OR of today+next10, got %v", ids(got))
	}

	got = Filter(tasks, "", Buckets{Next30Days: true}, now)
	if !sameIDs(ids(got), "in3", "in8", "in25") {
		t.Fatalf("expected next30 range, got %v", ids(got))
	}
}

func TestFilter_InvalidDateHiddenWhenBucketActive(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []model.Task{taskOn("1", "Broken", "not-a-date")}

	if got := Filter(tasks, "", Buckets{Next5Days: true}, now); len(got) != 0 {
		t.Fatalf("expected invalid-date task hidden, got %v", ids(got))
	}
	if got := Filter(tasks, "", Buckets{}, now); !sameIDs(ids(got), "1") {
		t.Fatalf("expected invalid-date task visible without buckets, got %v", ids(got))
	}
}

func TestFilter_TodayBucketKeepsOnlyTodaysTask(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	tasks := []model.Task{
		taskOn("1", "Pay bills", "2024-01-01"),
		taskOn("2", "Buy milk", "2024-01-10"),
	}

	got := Filter(tasks, "", Buckets{Today: true}, now)
	if !sameIDs(ids(got), "1") {
		t.Fatalf("expected [1], got %v", ids(got))
	}
}
