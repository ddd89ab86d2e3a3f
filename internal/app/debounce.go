package service

import (
	"sync"
	"time"
)

// Debouncer delays a callback until its quiescence window elapses without a
// new Schedule call. Scheduling replaces any pending callback; Cancel drops
// it. A superseded callback never runs.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	timer   *time.Timer
	pending func()
}

// NewDebouncer creates a debouncer with the given quiescence window.
// A zero or negative window makes Schedule fire synchronously.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Schedule replaces the pending callback and restarts the window.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if d.window <= 0 {
		d.pending = nil
		d.mu.Unlock()
		fn()
		return
	}

	d.pending = fn
	d.timer = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		run := d.pending
		d.pending = nil
		d.timer = nil
		d.mu.Unlock()

		if run != nil {
			run()
		}
	})
	d.mu.Unlock()
}

// Cancel drops the pending callback without firing it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a callback is waiting for its window.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
