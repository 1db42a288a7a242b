package watcher

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of Trigger calls into a single onFire call
// delay after the last one, mirroring the teacher's Debouncer used by its
// own file watcher (the type itself isn't in the retrieval pack, so this is
// authored fresh from its call sites: NewDebouncer/.Trigger()/.Cancel()).
type debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	onFire func()
	timer  *time.Timer
}

func newDebouncer(delay time.Duration, onFire func()) *debouncer {
	return &debouncer{delay: delay, onFire: onFire}
}

// trigger (re)starts the delay window. onFire runs on its own goroutine
// once no further Trigger calls arrive within delay.
func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.onFire)
}

// cancel stops any pending fire. Safe to call multiple times.
func (d *debouncer) cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
