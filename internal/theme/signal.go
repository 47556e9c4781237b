package theme

import "sync"

// Signal carries the current theme flag to charts.
// The embedding layer owns it and pushes changes with Set.
type Signal struct {
	mu   sync.Mutex
	dark bool
	next int
	subs map[int]func(dark bool)
}

// NewSignal creates a signal with the initial mode.
func NewSignal(dark bool) *Signal {
	return &Signal{
		dark: dark,
		subs: make(map[int]func(bool)),
	}
}

// Dark returns the current mode.
func (s *Signal) Dark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// Set updates the mode and notifies subscribers synchronously when it changed.
// Call it on the event loop that owns the subscribed charts.
func (s *Signal) Set(dark bool) {
	s.mu.Lock()
	if s.dark == dark {
		s.mu.Unlock()
		return
	}
	s.dark = dark
	subs := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(dark)
	}
}

// Subscribe registers fn for mode changes and returns the unsubscribe func.
func (s *Signal) Subscribe(fn func(dark bool)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}
