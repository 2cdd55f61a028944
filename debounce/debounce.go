// Package debounce delays a rapidly changing value until it has been stable
// for a quiet period.
package debounce

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type Option interface {
	apply(opts *options)
}

var _ Option = clockOption{}

type options struct {
	clock clockwork.Clock
}

type clockOption struct {
	clock clockwork.Clock
}

func (o clockOption) apply(opts *options) {
	opts.clock = o.clock
}

func WithClock(clock clockwork.Clock) clockOption {
	return clockOption{clock}
}

// Debouncer is either idle or waiting on a single timer. Update (re)starts the
// timer and Close releases it; only the latest value reaches Value and the
// onSettle callback. A Debouncer is safe for concurrent use.
type Debouncer[T any] struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	delay    time.Duration
	onSettle func(T)

	stable  T
	pending T
	timer   clockwork.Timer // nil when idle
	// gen identifies the current timer; a timer that fires after being
	// superseded sees a newer gen and does nothing.
	gen    uint64
	closed bool
}

// New returns an idle Debouncer whose stable value is initial. onSettle may be
// nil; when set it is called with each settled value outside of any lock.
func New[T any](initial T, delay time.Duration, onSettle func(T), opts ...Option) *Debouncer[T] {
	options := &options{
		clock: clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o.apply(options)
	}
	return &Debouncer[T]{
		clock:    options.clock,
		delay:    delay,
		onSettle: onSettle,
		stable:   initial,
	}
}

// Update records v as the latest value and restarts the quiet period.
// Updates after Close are ignored.
func (d *Debouncer[T]) Update(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.stopTimer()
	d.gen++
	gen := d.gen
	d.pending = v
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.stable = d.pending
	v := d.stable
	onSettle := d.onSettle
	d.mu.Unlock()

	if onSettle != nil {
		onSettle(v)
	}
}

// Value returns the last settled value.
func (d *Debouncer[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.stable
}

// Pending reports whether a value is waiting for the quiet period to end.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}

// Close cancels the pending timer, if any. The pending value is dropped.
func (d *Debouncer[T]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopTimer()
	d.closed = true
}

// stopTimer must be called with d.mu held.
func (d *Debouncer[T]) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
