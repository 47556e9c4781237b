package domain

import "fmt"

// Default series bounds.
const (
	DefaultSeriesCap       = 1000
	DefaultSeriesTrimChunk = 100
)

// Series is the ordered price buffer behind a chart.
// Times are strictly increasing. Not safe for concurrent use; owned by one chart.
type Series struct {
	points    []PricePoint
	cap       int
	trimChunk int
}

// NewSeries creates a series holding at most capacity points once a trim happens.
// A capacity <= 0 disables trimming.
func NewSeries(capacity int) *Series {
	chunk := DefaultSeriesTrimChunk
	if capacity > 0 && chunk > capacity {
		chunk = capacity
	}
	return &Series{cap: capacity, trimChunk: chunk}
}

// Replace swaps the full contents of the series.
// Points must already be strictly increasing in time.
func (s *Series) Replace(points []PricePoint) error {
	for i, p := range points {
		if !p.Valid() {
			return fmt.Errorf("point %d: %w", i, ErrInvalidPoint)
		}
		if i > 0 && p.Time <= points[i-1].Time {
			return fmt.Errorf("point %d at %d: %w", i, p.Time, ErrOutOfOrder)
		}
	}

	s.points = append(s.points[:0:0], points...)
	if s.cap > 0 && len(s.points) > s.cap {
		s.points = append([]PricePoint(nil), s.points[len(s.points)-s.cap:]...)
	}
	return nil
}

// UpsertResult describes what Upsert did.
type UpsertResult struct {
	Appended bool // a new point was added (otherwise the last point was replaced)
	Trimmed  bool // oldest points were dropped to respect the cap
}

// Upsert writes p into the series. A point at the last time replaces it in place,
// a newer point is appended and an older one is rejected with ErrOutOfOrder.
func (s *Series) Upsert(p PricePoint) (UpsertResult, error) {
	if !p.Valid() {
		return UpsertResult{}, ErrInvalidPoint
	}

	n := len(s.points)
	if n > 0 {
		last := s.points[n-1]
		if p.Time == last.Time {
			s.points[n-1] = p
			return UpsertResult{}, nil
		}
		if p.Time < last.Time {
			return UpsertResult{}, fmt.Errorf("time %d < %d: %w", p.Time, last.Time, ErrOutOfOrder)
		}
	}

	s.points = append(s.points, p)
	res := UpsertResult{Appended: true}

	// Trim in chunks so the renderer only re-sends the full series occasionally.
	if s.cap > 0 && len(s.points) >= s.cap+s.trimChunk {
		drop := len(s.points) - s.cap
		s.points = append(s.points[:0], s.points[drop:]...)
		res.Trimmed = true
	}
	return res, nil
}

// Last returns the newest point.
func (s *Series) Last() (PricePoint, bool) {
	if len(s.points) == 0 {
		return PricePoint{}, false
	}
	return s.points[len(s.points)-1], true
}

// Len returns the number of points.
func (s *Series) Len() int {
	return len(s.points)
}

// Points returns a copy of the series.
func (s *Series) Points() []PricePoint {
	out := make([]PricePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Reset discards every point.
func (s *Series) Reset() {
	s.points = nil
}
