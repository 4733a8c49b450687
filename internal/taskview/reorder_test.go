package taskview

import (
	"testing"

	"pioneer-cli/internal/model"
)

func fourTasks() []model.Task {
	return []model.Task{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C"},
		{ID: "d", Title: "D"},
	}
}

func TestReorder_DropIsInsertionNotSwap(t *testing.T) {
	var r Reorder
	r.Sync(fourTasks())

	r.BeginDrag("a")
	if !r.DropOn("c") {
		t.Fatalf("expected drop to apply")
	}
	r.EndDrag()

	// A takes C's former index; B and C shift left, D untouched.
	if !sameIDs(ids(r.Tasks()), "b", "c", "a", "d") {
		t.Fatalf("expected [b c a d], got %v", ids(r.Tasks()))
	}
}

func TestReorder_DropBackwardShiftsRight(t *testing.T) {
	var r Reorder
	r.Sync(fourTasks())

	r.BeginDrag("d")
	r.DropOn("b")
	r.EndDrag()

	if !sameIDs(ids(r.Tasks()), "a", "d", "b", "c") {
		t.Fatalf("expected [a d b c], got %v", ids(r.Tasks()))
	}
}

func TestReorder_NoopCases(t *testing.T) {
	var r Reorder
	r.Sync(fourTasks())

	// No active source.
	if r.DropOn("b") {
		t.Fatalf("expected drop without grab to be a no-op")
	}

	// Source == target.
	r.BeginDrag("b")
	if r.DropOn("b") {
		t.Fatalf("expected drop on self to be a no-op")
	}
	r.EndDrag()

	// Unknown grab id is ignored.
	r.BeginDrag("nope")
	if _, ok := r.Dragging(); ok {
		t.Fatalf("expected unknown id not to start a grab")
	}

	if !sameIDs(ids(r.Tasks()), "a", "b", "c", "d") {
		t.Fatalf("expected order untouched, got %v", ids(r.Tasks()))
	}
}

func TestReorder_SyncResetsToServerOrder(t *testing.T) {
	var r Reorder
	r.Sync(fourTasks())

	r.BeginDrag("a")
	r.DropOn("d")
	r.EndDrag()
	if sameIDs(ids(r.Tasks()), "a", "b", "c", "d") {
		t.Fatalf("expected manual order to differ before sync")
	}

	// Any refetch hands back server order; the manual order is discarded.
	r.Sync(fourTasks())
	if !sameIDs(ids(r.Tasks()), "a", "b", "c", "d") {
		t.Fatalf("expected server order after sync, got %v", ids(r.Tasks()))
	}
}

func TestReorder_SyncClearsActiveGrab(t *testing.T) {
	var r Reorder
	r.Sync(fourTasks())
	r.BeginDrag("a")

	r.Sync(fourTasks())
	if _, ok := r.Dragging(); ok {
		t.Fatalf("expected sync to clear the grab")
	}
}

func TestReorder_SyncCopiesInput(t *testing.T) {
	src := fourTasks()
	var r Reorder
	r.Sync(src)

	r.BeginDrag("d")
	r.DropOn("a")
	r.EndDrag()

	if !sameIDs(ids(src), "a", "b", "c", "d") {
		t.Fatalf("expected caller slice untouched, got %v", ids(src))
	}
}
