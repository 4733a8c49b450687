// Package notify models the transient notification feed: a mutation publishes
// a loading notice, then replaces it in place with the outcome instead of
// stacking a second one.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level int

const (
	LevelLoading Level = iota
	LevelSuccess
	LevelError
	LevelInfo
)

func (l Level) String() string {
	switch l {
	case LevelLoading:
		return "loading"
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	case LevelInfo:
		return "info"
	}
	return "unknown"
}

type Notification struct {
	ID      string
	Level   Level
	Message string
	At      time.Time
}

// Done reports whether the notification is terminal (not a spinner state).
func (n Notification) Done() bool { return n.Level != LevelLoading }

// Notifier keeps the active notification set and fans updates out to
// subscribers. Publishing with an id that is already present replaces that
// entry in place, preserving its slot in the feed.
type Notifier struct {
	mu     sync.Mutex
	order  []string
	byID   map[string]Notification
	subs   []chan Notification
	nowFn  func() time.Time
	nextID func() string
}

func New() *Notifier {
	return &Notifier{
		byID:   map[string]Notification{},
		nowFn:  time.Now,
		nextID: uuid.NewString,
	}
}

// Loading publishes an in-progress notification and returns its id, which the
// caller hands back to Success/Error to replace it.
func (n *Notifier) Loading(message string) string {
	id := n.nextID()
	n.publish(Notification{ID: id, Level: LevelLoading, Message: message})
	return id
}

// Success replaces the notification with the given id (or appends when the id
// is unknown, e.g. a success with no preceding loading state).
func (n *Notifier) Success(id, message string) {
	n.publish(Notification{ID: id, Level: LevelSuccess, Message: message})
}

func (n *Notifier) Error(id, message string) {
	n.publish(Notification{ID: id, Level: LevelError, Message: message})
}

func (n *Notifier) Info(message string) {
	n.publish(Notification{ID: n.nextID(), Level: LevelInfo, Message: message})
}

func (n *Notifier) publish(nt Notification) {
	n.mu.Lock()
	nt.At = n.nowFn()
	if nt.ID == "" {
		nt.ID = n.nextID()
	}
	if _, ok := n.byID[nt.ID]; !ok {
		n.order = append(n.order, nt.ID)
	}
	n.byID[nt.ID] = nt
	subs := append([]chan Notification(nil), n.subs...)
	n.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- nt:
		default:
			// A stalled subscriber must not block the mutation path.
		}
	}
}

// Active returns the notifications in publish order, oldest first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, 0, len(n.order))
	for _, id := range n.order {
		out = append(out, n.byID[id])
	}
	return out
}

// Latest returns the most recently published slot, if any.
func (n *Notifier) Latest() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.order) == 0 {
		return Notification{}, false
	}
	return n.byID[n.order[len(n.order)-1]], true
}

// Dismiss drops a notification from the feed.
func (n *Notifier) Dismiss(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.byID[id]; !ok {
		return
	}
	delete(n.byID, id)
	for i, v := range n.order {
		if v == id {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
}

// Subscribe returns a channel receiving every published notification. The
// channel is buffered; slow consumers drop updates rather than block.
func (n *Notifier) Subscribe() <-chan Notification {
	ch := make(chan Notification, 16)
	n.mu.Lock()
	n.subs = append(n.subs, ch)
	n.mu.Unlock()
	return ch
}
