package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrLoopClosed is returned by Call once the loop has stopped.
var ErrLoopClosed = errors.New("event loop closed")

type frameRequest struct {
	fn     func(time.Time)
	handle *Handle
}

// EventLoop is the production Loop backed by a single goroutine.
type EventLoop struct {
	frameInterval time.Duration

	mu     sync.Mutex
	queue  []func()
	frames []frameRequest
	wake   chan struct{}

	closed atomic.Bool
	done   chan struct{}
}

// Option configures an EventLoop.
type Option func(*EventLoop)

// WithFrameInterval sets the animation frame cadence.
func WithFrameInterval(d time.Duration) Option {
	return func(l *EventLoop) {
		if d > 0 {
			l.frameInterval = d
		}
	}
}

// New creates an EventLoop. Call Run to start processing.
func New(opts ...Option) *EventLoop {
	l := &EventLoop{
		frameInterval: DefaultFrameInterval,
		wake:          make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Compile-time interface check.
var _ Loop = (*EventLoop)(nil)

// Now returns wall clock time.
func (l *EventLoop) Now() time.Time {
	return time.Now()
}

// Post queues fn. Posts after the loop stopped are dropped.
func (l *EventLoop) Post(fn func()) {
	if fn == nil || l.closed.Load() {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc runs fn on the loop after d.
func (l *EventLoop) AfterFunc(d time.Duration, fn func()) *Handle {
	h := &Handle{}
	t := time.AfterFunc(d, func() {
		l.Post(func() {
			if !h.Canceled() {
				fn()
			}
		})
	})
	h.stop = func() { t.Stop() }
	return h
}

// RequestFrame runs fn on the next frame tick.
func (l *EventLoop) RequestFrame(fn func(now time.Time)) *Handle {
	h := &Handle{}
	l.mu.Lock()
	l.frames = append(l.frames, frameRequest{fn: fn, handle: h})
	l.mu.Unlock()
	return h
}

// Go runs work on a new goroutine.
func (l *EventLoop) Go(work func()) {
	go work()
}

// Call runs fn on the loop and waits for it to return.
// Must not be called from the loop goroutine.
func (l *EventLoop) Call(ctx context.Context, fn func()) error {
	if l.closed.Load() {
		return ErrLoopClosed
	}
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes callbacks until ctx is cancelled.
func (l *EventLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.frameInterval)
	defer ticker.Stop()
	defer func() {
		l.closed.Store(true)
		close(l.done)
	}()

	for {
		select {
		case <-ctx.Done():
			// Let already queued teardown work finish.
			l.drain()
			return ctx.Err()
		case <-l.wake:
			l.drain()
		case now := <-ticker.C:
			l.runFrames(now)
			l.drain()
		}
	}
}

// drain runs queued callbacks, including ones posted while draining.
func (l *EventLoop) drain() {
	for {
		l.mu.Lock()
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, fn := range batch {
			fn()
		}
	}
}

// runFrames runs the frame callbacks requested before this tick.
func (l *EventLoop) runFrames(now time.Time) {
	l.mu.Lock()
	batch := l.frames
	l.frames = nil
	l.mu.Unlock()

	for _, f := range batch {
		if !f.handle.Canceled() {
			f.fn(now)
		}
	}
}
