package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid calls for the same key. fn runs once the key has
// been quiet for the delay.
type Debouncer struct {
	delay  time.Duration
	timers map[string]*time.Timer
	mu     sync.Mutex
}

// NewDebouncer creates a new debouncer with the specified delay
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
	}
}

// Process schedules fn for key, replacing any call still pending for it.
func (d *Debouncer) Process(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, exists := d.timers[key]; exists {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A newer Process call may have replaced this timer.
		if d.timers[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()
		fn()
	})
	d.timers[key] = timer
}

// Pending returns the number of keys waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels all pending timers
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, timer := range d.timers {
		timer.Stop()
	}
	d.timers = make(map[string]*time.Timer)
}
