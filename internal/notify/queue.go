package notify

import (
	"sync"
	"time"
)

// Queue holds toasts until they expire. It is a Sink; the TUI reads the
// live entries on every render.
type Queue struct {
	mu    sync.Mutex
	ttl   time.Duration
	max   int
	items []Notification
}

// NewQueue creates a queue whose entries live for ttl. At most max entries
// are kept; older ones are dropped first.
func NewQueue(ttl time.Duration, max int) *Queue {
	if max < 1 {
		max = 1
	}
	return &Queue{ttl: ttl, max: max}
}

// Notify appends n. A zero At is stamped with the current time.
func (q *Queue) Notify(n Notification) {
	if n.At.IsZero() {
		n.At = time.Now()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, n)
	if len(q.items) > q.max {
		q.items = q.items[len(q.items)-q.max:]
	}
}

// Active returns the entries still visible at now, oldest first, and drops
// the expired ones.
func (q *Queue) Active(now time.Time) []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	for _, n := range q.items {
		if now.Sub(n.At) < q.ttl {
			kept = append(kept, n)
		}
	}
	q.items = kept

	if len(kept) == 0 {
		return nil
	}
	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}

// Latest returns the most recently queued entry regardless of expiry.
func (q *Queue) Latest() (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Notification{}, false
	}
	return q.items[len(q.items)-1], true
}

// Len returns the number of queued entries, expired ones included.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// TTL returns how long entries stay visible.
func (q *Queue) TTL() time.Duration { return q.ttl }
