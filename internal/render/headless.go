package render

import (
	"sync"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/theme"
)

// Snapshot is a copy of a HeadlessSurface's state.
type Snapshot struct {
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Points     []domain.PricePoint `json:"points"`
	Palette    theme.Palette       `json:"palette"`
	PriceLabel string              `json:"price_label"`
	Released   bool                `json:"released"`

	SetDataCalls int `json:"set_data_calls"`
	UpdateCalls  int `json:"update_calls"`
	FitCalls     int `json:"fit_calls"`
	ScrollCalls  int `json:"scroll_calls"`
	OptionCalls  int `json:"option_calls"`
	Listeners    int `json:"listeners"`
}

// HeadlessSurface is an in-memory Surface. It is safe for concurrent use so
// the snapshot can be read outside the loop.
type HeadlessSurface struct {
	mu        sync.Mutex
	state     Snapshot
	nextID    int
	listeners map[int]func(width, height int)
}

// NewHeadlessSurface creates a surface with the given container size.
func NewHeadlessSurface(width, height int) *HeadlessSurface {
	return &HeadlessSurface{
		state:     Snapshot{Width: width, Height: height},
		listeners: make(map[int]func(int, int)),
	}
}

// Compile-time interface check.
var _ Surface = (*HeadlessSurface)(nil)

// SetSize simulates a container layout change and notifies listeners.
func (s *HeadlessSurface) SetSize(width, height int) {
	s.mu.Lock()
	s.state.Width, s.state.Height = width, height
	fns := make([]func(int, int), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(width, height)
	}
}

// Snapshot returns a copy of the current state.
func (s *HeadlessSurface) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state
	snap.Points = append([]domain.PricePoint(nil), s.state.Points...)
	snap.Listeners = len(s.listeners)
	return snap
}

func (s *HeadlessSurface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Width, s.state.Height
}

func (s *HeadlessSurface) SetData(points []domain.PricePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Points = append(s.state.Points[:0:0], points...)
	s.state.SetDataCalls++
}

func (s *HeadlessSurface) Update(p domain.PricePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UpdateCalls++
	if n := len(s.state.Points); n > 0 && s.state.Points[n-1].Time == p.Time {
		s.state.Points[n-1] = p
		return
	}
	s.state.Points = append(s.state.Points, p)
}

func (s *HeadlessSurface) FitContent() {
	s.mu.Lock()
	s.state.FitCalls++
	s.mu.Unlock()
}

func (s *HeadlessSurface) ScrollToRealTime() {
	s.mu.Lock()
	s.state.ScrollCalls++
	s.mu.Unlock()
}

func (s *HeadlessSurface) ApplyOptions(p theme.Palette) {
	s.mu.Lock()
	s.state.Palette = p
	s.state.OptionCalls++
	s.mu.Unlock()
}

// Resize records the drawing size. It does not notify listeners.
func (s *HeadlessSurface) Resize(width, height int) {
	s.mu.Lock()
	s.state.Width, s.state.Height = width, height
	s.mu.Unlock()
}

func (s *HeadlessSurface) SetPriceLabel(label string) {
	s.mu.Lock()
	s.state.PriceLabel = label
	s.mu.Unlock()
}

func (s *HeadlessSurface) OnResize(fn func(width, height int)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *HeadlessSurface) Release() {
	s.mu.Lock()
	s.state.Released = true
	s.state.Points = nil
	s.mu.Unlock()
}
