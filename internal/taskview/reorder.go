package taskview

import (
	"strings"

	"pioneer-cli/internal/model"
)

// Reorder maintains the manual presentation order of the task list.
//
// The order is view-only: dropping never calls the backend, and Sync (run on
// every refetch) discards the manual order in favor of server order. That the
// order is lost after any successful mutation is the current, intended
// observable behavior.
type Reorder struct {
	tasks  []model.Task
	dragID string
}

// Sync replaces the ordered view with the server-provided collection,
// resetting any manual order and clearing an in-progress grab.
func (r *Reorder) Sync(tasks []model.Task) {
	r.tasks = append(r.tasks[:0:0], tasks...)
	r.dragID = ""
}

// Tasks returns the current presentation order.
func (r *Reorder) Tasks() []model.Task {
	return r.tasks
}

// Dragging returns the id of the active drag source, if any.
func (r *Reorder) Dragging() (string, bool) {
	return r.dragID, r.dragID != ""
}

// BeginDrag records the task as the active drag source. Unknown ids are
// ignored so a stale grab cannot survive a refetch.
func (r *Reorder) BeginDrag(id string) {
	if r.indexOf(id) < 0 {
		return
	}
	r.dragID = id
}

// DropOn removes the drag source from its position and reinserts it at the
// target's current index, shifting the tasks in between (an insertion, not a
// swap). No-op without an active source or when source == target. The grab
// stays active until EndDrag.
func (r *Reorder) DropOn(targetID string) bool {
	if r.dragID == "" || r.dragID == targetID {
		return false
	}
	src := r.indexOf(r.dragID)
	dst := r.indexOf(targetID)
	if src < 0 || dst < 0 {
		return false
	}
	moved := r.tasks[src]
	rest := append(r.tasks[:src:src], r.tasks[src+1:]...)
	r.tasks = append(rest[:dst:dst], append([]model.Task{moved}, rest[dst:]...)...)
	return true
}

// EndDrag clears the active drag source whether or not a drop happened.
func (r *Reorder) EndDrag() {
	r.dragID = ""
}

func (r *Reorder) indexOf(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i, t := range r.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
