package api

import "sync"

// Tag names a cached resource family. Mutations invalidate the tag of the
// resource they touched; views subscribe and refetch on invalidation.
type Tag string

const (
	TagTodo Tag = "todo"
	TagAuth Tag = "auth"
)

// invalidations is a small subject decoupling "data changed" from "somebody
// re-rendered": the gateway publishes, views decide when to refetch.
type invalidations struct {
	mu   sync.Mutex
	subs []chan Tag
}

func (iv *invalidations) publish(tag Tag) {
	iv.mu.Lock()
	subs := append([]chan Tag(nil), iv.subs...)
	iv.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- tag:
		default:
		}
	}
}

func (iv *invalidations) subscribe() <-chan Tag {
	ch := make(chan Tag, 8)
	iv.mu.Lock()
	iv.subs = append(iv.subs, ch)
	iv.mu.Unlock()
	return ch
}
