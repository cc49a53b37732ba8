package search

import (
	"sync"
	"time"
)

// DefaultQuietPeriod is how long input must stay unchanged before a scheduled
// query runs.
const DefaultQuietPeriod = 300 * time.Millisecond

// Debouncer coalesces rapid query updates: each Schedule call supersedes the
// previous one and only the last query still pending after the quiet period
// is evaluated.
type Debouncer struct {
	quiet time.Duration
	run   func(query string)

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer that invokes run after the quiet period.
// A non-positive quiet period falls back to DefaultQuietPeriod.
func NewDebouncer(quiet time.Duration, run func(query string)) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{quiet: quiet, run: run}
}

// Schedule queues query for evaluation, cancelling any pending one.
func (d *Debouncer) Schedule(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() {
		d.run(query)
	})
}

// Stop cancels any pending evaluation. The debouncer accepts no further
// schedules afterwards.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
