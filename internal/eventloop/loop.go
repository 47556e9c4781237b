// Package eventloop provides the single-threaded cooperative runtime the chart
// engine runs on. Every callback (posted work, timers, animation frames) runs on
// one goroutine in arrival order, so engine state needs no locking.
package eventloop

import (
	"sync/atomic"
	"time"
)

// DefaultFrameInterval is the animation frame cadence (~60fps).
const DefaultFrameInterval = 16 * time.Millisecond

// Loop schedules callbacks onto the loop goroutine.
type Loop interface {
	// Now returns the loop clock.
	Now() time.Time

	// Post queues fn to run on the loop. Safe to call from any goroutine.
	Post(fn func())

	// AfterFunc runs fn on the loop once d has elapsed.
	AfterFunc(d time.Duration, fn func()) *Handle

	// RequestFrame runs fn on the next animation frame.
	RequestFrame(fn func(now time.Time)) *Handle

	// Go runs blocking work off the loop. Work must Post its results back.
	Go(work func())
}

// Handle is a cancellable scheduled callback.
type Handle struct {
	canceled atomic.Bool
	stop     func()
}

// Cancel prevents the callback from running. Safe to call repeatedly or on nil.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	if h.canceled.Swap(true) {
		return
	}
	if h.stop != nil {
		h.stop()
	}
}

// Canceled reports whether Cancel was called.
func (h *Handle) Canceled() bool {
	if h == nil {
		return true
	}
	return h.canceled.Load()
}
