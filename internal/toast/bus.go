// Package toast carries short-lived user feedback messages from the
// places that produce them to whatever renders them.
package toast

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDuration is how long a toast stays visible unless set otherwise.
const DefaultDuration = 4000 * time.Millisecond

// Severity selects the styling of a toast.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Toast is one feedback message.
type Toast struct {
	ID        string
	Text      string
	Severity  Severity
	Duration  time.Duration
	CreatedAt time.Time
}

// ExpiresAt returns the instant after which the toast is no longer shown.
func (t Toast) ExpiresAt() time.Time {
	return t.CreatedAt.Add(t.Duration)
}

// Publisher is the write side of a Bus.
type Publisher interface {
	Publish(t Toast)
}

// Bus fans published toasts out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the toast.
type Bus struct {
	mu              sync.RWMutex
	subs            map[chan Toast]struct{}
	defaultDuration time.Duration
	now             func() time.Time
}

// NewBus returns a bus stamping toasts without a duration with d, or
// DefaultDuration when d is not positive.
func NewBus(d time.Duration) *Bus {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Bus{
		subs:            make(map[chan Toast]struct{}),
		defaultDuration: d,
		now:             time.Now,
	}
}

// Subscribe registers a buffered subscriber. The returned function
// unregisters it and closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Toast, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Toast, buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish fills in the ID, timestamp and duration and delivers t to every
// subscriber. Toasts with blank text are dropped.
func (b *Bus) Publish(t Toast) {
	if strings.TrimSpace(t.Text) == "" {
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Severity == "" {
		t.Severity = SeverityInfo
	}
	if t.Duration <= 0 {
		t.Duration = b.defaultDuration
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = b.now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- t:
		default:
		}
	}
}

// Info publishes an informational toast on p.
func Info(p Publisher, text string) {
	p.Publish(Toast{Text: text, Severity: SeverityInfo})
}

// Success publishes a success toast on p.
func Success(p Publisher, text string) {
	p.Publish(Toast{Text: text, Severity: SeveritySuccess})
}

// Warning publishes a warning toast on p.
func Warning(p Publisher, text string) {
	p.Publish(Toast{Text: text, Severity: SeverityWarning})
}

// Error publishes an error toast on p.
func Error(p Publisher, text string) {
	p.Publish(Toast{Text: text, Severity: SeverityError})
}
