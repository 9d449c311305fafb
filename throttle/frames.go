package throttle

import (
	"context"
	"sync"
	"time"
)

// DefaultFrameInterval is the refresh cadence of a 60Hz display.
const DefaultFrameInterval = time.Second / 60

// Frames schedules callbacks on the next frame of a refresh loop.
// Callbacks requested before a frame starts run on that frame, in request
// order. Callbacks requested while a frame runs wait for the following one.
type Frames interface {
	RequestFrame(cb func())
}

// queue holds callbacks waiting for the next frame.
type queue struct {
	mu      sync.Mutex
	pending []func()
}

func (q *queue) RequestFrame(cb func()) {
	q.mu.Lock()
	q.pending = append(q.pending, cb)
	q.mu.Unlock()
}

// flush runs the callbacks queued before the call and reports how many ran.
func (q *queue) flush() int {
	q.mu.Lock()
	cbs := q.pending
	q.pending = nil
	q.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
	return len(cbs)
}

// Loop is a ticker-driven frame loop. All callbacks run on the goroutine
// that called Run.
type Loop struct {
	queue
	interval time.Duration
}

// NewLoop creates a Loop ticking every interval. A non-positive interval
// uses DefaultFrameInterval.
func NewLoop(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Loop{interval: interval}
}

// Interval returns the time between frames.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run ticks frames until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.flush()
		}
	}
}

// Start runs the loop in a new goroutine. The returned function stops it
// and waits for the current frame to finish.
func (l *Loop) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// ManualFrames is a Frames whose frames advance only when Advance is called.
type ManualFrames struct {
	queue
}

// NewManualFrames returns a ManualFrames with no pending callbacks.
func NewManualFrames() *ManualFrames {
	return &ManualFrames{}
}

// Advance runs one frame and returns the number of callbacks it ran.
func (m *ManualFrames) Advance() int {
	return m.flush()
}

// Pending returns the number of callbacks waiting for the next frame.
func (m *ManualFrames) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

var (
	defaultOnce sync.Once
	defaultLoop *Loop
)

// DefaultFrames returns a process-wide Loop at DefaultFrameInterval,
// started on first use.
func DefaultFrames() Frames {
	defaultOnce.Do(func() {
		defaultLoop = NewLoop(DefaultFrameInterval)
		go defaultLoop.Run(context.Background())
	})
	return defaultLoop
}
