// Package quota tracks request and post consumption against API allowances.
package quota

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultSpan is the API's rate-limit window.
const DefaultSpan = 15 * time.Minute

// Window counts events over a rolling span. Safe for concurrent use.
type Window struct {
	clock clockwork.Clock
	span  time.Duration

	mu     sync.Mutex
	events []time.Time
}

// NewWindow creates a rolling counter. A nil clock uses the real clock;
// a non-positive span uses DefaultSpan.
func NewWindow(clock clockwork.Clock, span time.Duration) *Window {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if span <= 0 {
		span = DefaultSpan
	}
	return &Window{clock: clock, span: span}
}

// Record counts one event now.
func (w *Window) Record() {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.clock.Now()
	w.prune(now)
	w.events = append(w.events, now)
}

// Count returns the events inside the window.
func (w *Window) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune(w.clock.Now())
	return len(w.events)
}

// Remaining returns how many more events limit allows, never negative.
func (w *Window) Remaining(limit int) int {
	return max(0, limit-w.Count())
}

// ResetIn returns how long until the oldest event leaves the window, or 0 when empty.
func (w *Window) ResetIn() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := w.clock.Now()
	w.prune(now)
	if len(w.events) == 0 {
		return 0
	}
	return w.events[0].Add(w.span).Sub(now)
}

// prune drops events older than span. Caller holds mu.
func (w *Window) prune(now time.Time) {
	cutoff := now.Add(-w.span)
	i := 0
	for i < len(w.events) && !w.events[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.events = append(w.events[:0], w.events[i:]...)
	}
}
