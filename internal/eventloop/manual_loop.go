package eventloop

import (
	"sort"
	"sync"
	"time"
)

type manualTimer struct {
	at     time.Time
	seq    int
	fn     func()
	handle *Handle
}

type manualFrame struct {
	requested time.Time
	fn        func(time.Time)
	handle    *Handle
}

// ManualLoop is a virtual-time Loop for deterministic tests.
// Time only moves through Advance; Go runs work inline.
type ManualLoop struct {
	mu            sync.Mutex
	start         time.Time
	now           time.Time
	frameInterval time.Duration
	seq           int
	queue         []func()
	timers        []*manualTimer
	frames        []manualFrame
}

// NewManual creates a ManualLoop whose clock starts at start.
func NewManual(start time.Time) *ManualLoop {
	return &ManualLoop{
		start:         start,
		now:           start,
		frameInterval: DefaultFrameInterval,
	}
}

// Compile-time interface check.
var _ Loop = (*ManualLoop)(nil)

// Now returns the virtual clock.
func (l *ManualLoop) Now() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.now
}

// Post queues fn until the next Drain or Advance.
func (l *ManualLoop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
}

// AfterFunc schedules fn at now+d of virtual time.
func (l *ManualLoop) AfterFunc(d time.Duration, fn func()) *Handle {
	h := &Handle{}
	l.mu.Lock()
	l.seq++
	l.timers = append(l.timers, &manualTimer{at: l.now.Add(d), seq: l.seq, fn: fn, handle: h})
	l.mu.Unlock()
	return h
}

// RequestFrame schedules fn on the next frame boundary.
func (l *ManualLoop) RequestFrame(fn func(now time.Time)) *Handle {
	h := &Handle{}
	l.mu.Lock()
	l.frames = append(l.frames, manualFrame{requested: l.now, fn: fn, handle: h})
	l.mu.Unlock()
	return h
}

// Go runs work synchronously.
func (l *ManualLoop) Go(work func()) {
	work()
}

// Drain runs posted callbacks until the queue is empty.
func (l *ManualLoop) Drain() {
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

// Advance moves virtual time forward by d, firing timers and frames in order.
func (l *ManualLoop) Advance(d time.Duration) {
	l.Drain()

	l.mu.Lock()
	target := l.now.Add(d)
	l.mu.Unlock()

	for {
		l.mu.Lock()
		at, kind := l.nextEventLocked()
		if kind == eventNone || at.After(target) {
			l.now = target
			l.mu.Unlock()
			break
		}
		l.now = at
		l.mu.Unlock()

		if kind == eventTimer {
			l.fireTimer(at)
		} else {
			l.fireFrames(at)
		}
		l.Drain()
	}

	l.Drain()
}

// PendingTimers returns the number of live scheduled timers.
func (l *ManualLoop) PendingTimers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, t := range l.timers {
		if !t.handle.Canceled() {
			n++
		}
	}
	return n
}

// PendingFrames returns the number of live frame requests.
func (l *ManualLoop) PendingFrames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, f := range l.frames {
		if !f.handle.Canceled() {
			n++
		}
	}
	return n
}

type eventKind int

const (
	eventNone eventKind = iota
	eventTimer
	eventFrame
)

// nextEventLocked returns the earliest pending event. Timers win ties.
func (l *ManualLoop) nextEventLocked() (time.Time, eventKind) {
	var (
		at   time.Time
		kind = eventNone
	)

	for _, t := range l.timers {
		if t.handle.Canceled() {
			continue
		}
		if kind == eventNone || t.at.Before(at) {
			at, kind = t.at, eventTimer
		}
	}

	for _, f := range l.frames {
		if f.handle.Canceled() {
			continue
		}
		fa := l.frameBoundary(f.requested)
		if kind == eventNone || fa.Before(at) {
			at, kind = fa, eventFrame
		}
	}

	return at, kind
}

// frameBoundary returns the first frame tick strictly after t.
func (l *ManualLoop) frameBoundary(t time.Time) time.Time {
	elapsed := t.Sub(l.start)
	n := elapsed/l.frameInterval + 1
	return l.start.Add(n * l.frameInterval)
}

func (l *ManualLoop) fireTimer(at time.Time) {
	l.mu.Lock()
	sort.SliceStable(l.timers, func(i, j int) bool {
		if l.timers[i].at.Equal(l.timers[j].at) {
			return l.timers[i].seq < l.timers[j].seq
		}
		return l.timers[i].at.Before(l.timers[j].at)
	})

	var due *manualTimer
	rest := l.timers[:0]
	for _, t := range l.timers {
		if t.handle.Canceled() {
			continue
		}
		if due == nil && !t.at.After(at) {
			due = t
			continue
		}
		rest = append(rest, t)
	}
	l.timers = rest
	l.mu.Unlock()

	if due != nil && !due.handle.Canceled() {
		due.fn()
	}
}

func (l *ManualLoop) fireFrames(at time.Time) {
	l.mu.Lock()
	var due []manualFrame
	rest := l.frames[:0]
	for _, f := range l.frames {
		if f.handle.Canceled() {
			continue
		}
		if !l.frameBoundary(f.requested).After(at) {
			due = append(due, f)
			continue
		}
		rest = append(rest, f)
	}
	l.frames = rest
	l.mu.Unlock()

	for _, f := range due {
		if !f.handle.Canceled() {
			f.fn(at)
		}
	}
}
