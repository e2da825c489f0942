// Package debounce provides trailing-edge debouncing for suggestion fetches.
package debounce

import (
	"sync"
	"time"
)

// Debouncer collapses rapid successive calls into a single task execution
// after a quiet period. Each call supplies its own task; a new call made
// before the delay elapses drops the previously scheduled task and
// restarts the timer. Tasks run on the timer goroutine and never on the
// leading edge.
//
// Thread-safety: all methods are safe for concurrent use. A long-running
// task may still be executing when the next one fires; callers that care
// must guard against out-of-order completion themselves.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	seq   uint64 // invalidates superseded timer callbacks
	task  func()
}

// New creates a debouncer with the given quiet period.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the configured quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Call schedules task to run after the quiet period. Any previously
// pending task is dropped, not deferred. The task is caller-supplied;
// panics inside it are not recovered here.
func (d *Debouncer) Call(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.task = task
	d.seq++
	current := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.seq != current || d.task == nil {
			d.mu.Unlock()
			return
		}
		run := d.task
		d.task = nil
		d.mu.Unlock()
		run()
	})
}

// Cancel drops any pending task without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.task = nil
}

// IsPending reports whether a task is scheduled and has not yet run.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.task != nil
}

// Flush runs the pending task immediately, if any, cancelling its timer.
func (d *Debouncer) Flush() {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++

	if d.task == nil {
		d.mu.Unlock()
		return
	}
	run := d.task
	d.task = nil
	d.mu.Unlock()
	run()
}
