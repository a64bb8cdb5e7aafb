package explorer

import (
	"strings"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before typed input becomes a search.
const DefaultDebounce = 500 * time.Millisecond

// Debouncer coalesces bursts of input into one call carrying the last term.
// A blank term is delivered immediately and cancels any pending call.
type Debouncer struct {
	wait time.Duration
	fn   func(term string)

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	seq     uint64
	stopped bool
}

// NewDebouncer creates a Debouncer calling fn. wait <= 0 uses DefaultDebounce.
func NewDebouncer(wait time.Duration, fn func(term string)) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer{wait: wait, fn: fn}
}

// Trigger records new input.
func (d *Debouncer) Trigger(term string) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	if strings.TrimSpace(term) == "" {
		d.mu.Unlock()
		d.fn(term)
		return
	}

	d.pending = term
	d.timer = time.AfterFunc(d.wait, func() { d.fire(seq, term) })
	d.mu.Unlock()
}

func (d *Debouncer) fire(seq uint64, term string) {
	d.mu.Lock()
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn(term)
}

// Pending reports whether a call is waiting for the quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Flush delivers a pending call now instead of after the quiet period.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.stopped || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer.Stop()
	d.timer = nil
	d.seq++
	term := d.pending
	d.mu.Unlock()

	d.fn(term)
}

// Stop drops any pending call. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
