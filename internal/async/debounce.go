// Package async provides the scheduling primitives the dashboard
// orchestration is built from: a trailing-edge debouncer and a bounded
// batch dispatcher.
package async

import (
	"sync"
	"time"
)

// Debouncer collapses bursts of Trigger calls into a single deferred
// invocation of fn, timed from the most recent call (trailing edge).
// It is safe for concurrent use.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	fn    func()
	timer *time.Timer
}

// NewDebouncer wraps fn with a quiet interval of delay.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn to run after the quiet interval. A pending run is
// cancelled and replaced, so any number of rapid triggers produce exactly
// one invocation once the calls stop.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels any pending invocation. It does not interrupt a run that has
// already started, and later Triggers schedule normally again.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
