package service

import (
	"sync"
	"time"

	"github.com/xiaobei/mvd/internal/clock"
)

// DefaultDebounceWindow is the quiet period for price inputs.
const DefaultDebounceWindow = 800 * time.Millisecond

// Debouncer delays calls to fn until no new call has arrived for the
// window. Only the last argument is delivered.
type Debouncer[T any] struct {
	clock clock.Clock
	wait  time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *clock.Timer
	last    T
	pending bool
	gen     uint64
}

// NewDebouncer creates a debouncer around fn.
func NewDebouncer[T any](c clock.Clock, wait time.Duration, fn func(T)) *Debouncer[T] {
	if c == nil {
		c = clock.Real()
	}
	return &Debouncer[T]{clock: c, wait: wait, fn: fn}
}

// Call records v and restarts the window.
func (d *Debouncer[T]) Call(v T) {
	d.mu.Lock()
	d.last = v
	d.pending = true
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	// Scheduled outside the lock: a zero window fires synchronously.
	timer := d.clock.AfterFunc(d.wait, func() { d.fire(gen) })

	d.mu.Lock()
	if d.gen == gen && d.pending {
		d.timer = timer
	}
	d.mu.Unlock()
}

// Flush runs a pending call immediately. Returns false when nothing was
// pending.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	v, ok := d.takeLocked()
	d.mu.Unlock()
	if ok {
		d.fn(v)
	}
	return ok
}

// Cancel drops a pending call.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	d.takeLocked()
	d.mu.Unlock()
}

// Pending reports whether a call is waiting for its window to close.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	v, ok := d.takeLocked()
	d.mu.Unlock()
	if ok {
		d.fn(v)
	}
}

// takeLocked clears the pending state and returns the last argument.
func (d *Debouncer[T]) takeLocked() (T, bool) {
	var zero T
	if !d.pending {
		return zero, false
	}
	v := d.last
	d.last = zero
	d.pending = false
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return v, true
}
