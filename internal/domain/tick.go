package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTick is returned for ticks that must not reach the chart.
var ErrInvalidTick = errors.New("invalid tick")

// TickSource identifies the transport that produced a tick.
type TickSource string

const (
	TickSourceWebSocket TickSource = "websocket"
	TickSourcePoll      TickSource = "poll"
)

// String returns the string representation of TickSource.
func (s TickSource) String() string {
	return string(s)
}

// Tick is one live price update.
type Tick struct {
	Price  float64    // USD price
	Time   int64      // Unix timestamp (seconds)
	Source TickSource // transport that delivered it
	Origin string     // upstream price source reported by the backend, if any
}

// Validate checks that the tick can be rendered.
func (t Tick) Validate() error {
	if math.IsNaN(t.Price) || math.IsInf(t.Price, 0) || t.Price <= 0 {
		return fmt.Errorf("%w: price %v", ErrInvalidTick, t.Price)
	}
	if t.Time <= 0 {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidTick)
	}
	return nil
}

// Point returns the tick as a chart point.
func (t Tick) Point() PricePoint {
	return PricePoint{Time: t.Time, Value: t.Price}
}
