package interaction

import (
	"sync"
	"time"
)

// ReloadDebounceDelay is how long threshold changes coalesce before a reload
// fires. Slider drags produce a burst of intermediate values; only the last
// one should hit the data provider.
const ReloadDebounceDelay = 400 * time.Millisecond

// Debouncer coalesces rapid calls into one, firing fn with the last value
// after the delay elapses without a newer call. Safe for concurrent use.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer returns a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Call schedules fn, replacing any pending call.
func (d *Debouncer) Call(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Cancel drops any pending call. Used on teardown so a reload never fires
// into a torn-down view.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
