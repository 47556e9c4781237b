package domain

import (
	"errors"
	"math"
)

// ErrOutOfOrder is returned when a point is older than the last point of a series.
var ErrOutOfOrder = errors.New("point is older than the last series point")

// ErrInvalidPoint is returned for points with a non-positive time or value.
var ErrInvalidPoint = errors.New("invalid price point")

// PricePoint is one sample of the chart line.
type PricePoint struct {
	Time  int64   `json:"time"`  // Unix timestamp (seconds)
	Value float64 `json:"value"` // USD price, always > 0
}

// Valid reports whether the point can be placed on a series.
func (p PricePoint) Valid() bool {
	return p.Time > 0 && p.Value > 0 && !math.IsInf(p.Value, 0) && !math.IsNaN(p.Value)
}

// Candle is one OHLCV bar from the market data API.
type Candle struct {
	Timestamp int64 // Unix timestamp (seconds), bar open
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}
