package toast

import (
	"slices"
	"time"
)

// Queue holds the toasts currently on screen, newest first.
type Queue struct {
	items []Toast
	limit int
}

// NewQueue returns a queue showing at most limit toasts (unbounded when
// limit is not positive).
func NewQueue(limit int) *Queue {
	return &Queue{limit: limit}
}

// Add puts t at the front, evicting the oldest toast when full.
func (q *Queue) Add(t Toast) {
	q.items = append([]Toast{t}, q.items...)
	if q.limit > 0 && len(q.items) > q.limit {
		q.items = q.items[:q.limit]
	}
}

// Dismiss removes the toast with the given id and reports whether it was
// present.
func (q *Queue) Dismiss(id string) bool {
	n := len(q.items)
	q.items = slices.DeleteFunc(q.items, func(t Toast) bool { return t.ID == id })
	return len(q.items) != n
}

// Expire drops every toast whose display time has passed at now.
func (q *Queue) Expire(now time.Time) {
	q.items = slices.DeleteFunc(q.items, func(t Toast) bool { return !now.Before(t.ExpiresAt()) })
}

// Items returns the visible toasts, newest first.
func (q *Queue) Items() []Toast {
	return slices.Clone(q.items)
}

// Len returns the number of visible toasts.
func (q *Queue) Len() int {
	return len(q.items)
}
