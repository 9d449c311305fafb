// Package throttle suppresses repeated calls to a function until the next
// frame of a refresh loop.
//
// A throttled call runs immediately if the throttler is idle and puts it in
// cooldown. Calls made during cooldown are dropped. Cooldown ends on the first
// frame after the call returns, or the configured limit after it returns when
// ResetAfterLimit is set.
package throttle

import (
	"sync/atomic"
	"time"
)

// Option configures a Throttler.
type Option func(*Throttler)

// WithFrames sets the frame source that ends each cooldown.
func WithFrames(f Frames) Option {
	return func(t *Throttler) {
		t.frames = f
	}
}

// ResetAfterLimit ends each cooldown after the throttler's limit instead of
// on the next frame.
func ResetAfterLimit() Option {
	return func(t *Throttler) {
		t.timed = true
	}
}

// Throttler owns a single idle/cooling-down state. It is safe for
// concurrent use.
type Throttler struct {
	cooling atomic.Bool
	limit   time.Duration
	frames  Frames
	timed   bool
}

// New returns an idle Throttler. Unless ResetAfterLimit is given, limit is
// only recorded: cooldown lasts until the next frame.
func New(limit time.Duration, opts ...Option) *Throttler {
	t := &Throttler{limit: limit}
	for _, opt := range opts {
		opt(t)
	}
	if t.frames == nil && !t.timed {
		t.frames = DefaultFrames()
	}
	return t
}

// Limit returns the time limit the throttler was created with.
func (t *Throttler) Limit() time.Duration {
	return t.limit
}

// Do calls fn unless the throttler is cooling down. Cooldown starts before
// fn runs and its end is requested once fn returns, so a slow fn never
// overlaps another call. A panicking fn still requests the end of cooldown.
func (t *Throttler) Do(fn func()) {
	if !t.enter() {
		return
	}
	defer t.schedule()
	fn()
}

func (t *Throttler) enter() bool {
	return t.cooling.CompareAndSwap(false, true)
}

// schedule requests the end of the current cooldown.
func (t *Throttler) schedule() {
	if t.timed {
		time.AfterFunc(t.limit, t.reset)
		return
	}
	t.frames.RequestFrame(t.reset)
}

func (t *Throttler) reset() {
	t.cooling.Store(false)
}

// Func wraps fn in a new Throttler.
func Func(fn func(), limit time.Duration, opts ...Option) func() {
	t := New(limit, opts...)
	return func() {
		t.Do(fn)
	}
}

// Wrap wraps a single-argument fn in a new Throttler. Pass a method value to
// keep the receiver.
func Wrap[T any](fn func(T), limit time.Duration, opts ...Option) func(T) {
	t := New(limit, opts...)
	return func(arg T) {
		if !t.enter() {
			return
		}
		defer t.schedule()
		fn(arg)
	}
}

// WrapErr wraps fn in a new Throttler. Errors from calls that run are returned
// unchanged; dropped calls return nil.
func WrapErr[T any](fn func(T) error, limit time.Duration, opts ...Option) func(T) error {
	t := New(limit, opts...)
	return func(arg T) error {
		if !t.enter() {
			return nil
		}
		defer t.schedule()
		return fn(arg)
	}
}
