package backfill

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/marketdata"
)

type stubSource struct {
	candles []domain.Candle
	err     error
	calls   int
	query   marketdata.OHLCVQuery
}

func (s *stubSource) OHLCV(_ context.Context, _ string, q marketdata.OHLCVQuery) ([]domain.Candle, error) {
	s.calls++
	s.query = q
	return s.candles, s.err
}

// newestFirst builds n five-minute candles ending at lastClose, newest first like the API.
func newestFirst(n int, lastClose float64) []domain.Candle {
	candles := make([]domain.Candle, 0, n)
	end := int64(1700000000)
	for i := 0; i < n; i++ {
		c := lastClose * (1 + float64(i)*0.001)
		candles = append(candles, domain.Candle{Timestamp: end - int64(i)*300, Close: c})
	}
	return candles
}

func TestLoad_HundredCandles(t *testing.T) {
	src := &stubSource{candles: newestFirst(100, 0.0001234)}
	b := New(src, Options{Logger: zerolog.Nop()})

	points, err := b.Load(context.Background(), "pool")
	require.NoError(t, err)
	require.Len(t, points, 100)

	assert.Equal(t, 0.0001234, points[99].Value)
	assert.Equal(t, int64(1700000000), points[99].Time)
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].Time, points[i-1].Time)
	}

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, marketdata.DefaultOHLCVQuery(), src.query)
}

func TestLoad_MissingPool(t *testing.T) {
	src := &stubSource{}
	b := New(src, Options{})

	_, err := b.Load(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingPool)
	assert.Equal(t, 0, src.calls)
}

func TestLoad_SourceErrorIsTyped(t *testing.T) {
	src := &stubSource{err: &marketdata.StatusError{Code: 500, Body: "boom"}}
	b := New(src, Options{})

	_, err := b.Load(context.Background(), "pool")
	require.Error(t, err)

	var bfErr *Error
	require.True(t, errors.As(err, &bfErr))
	assert.Equal(t, "pool", bfErr.Pool)

	var statusErr *marketdata.StatusError
	assert.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 1, src.calls, "no retries")
}

func TestLoad_NoUsableCandles(t *testing.T) {
	src := &stubSource{candles: []domain.Candle{{Timestamp: 100, Close: 0}, {Timestamp: 200, Close: math.NaN()}}}
	b := New(src, Options{})

	_, err := b.Load(context.Background(), "pool")
	assert.ErrorIs(t, err, ErrNoCandles)
}

func TestClosePoints_CoalescesDuplicates(t *testing.T) {
	points := ClosePoints([]domain.Candle{
		{Timestamp: 300, Close: 3},
		{Timestamp: 100, Close: 1},
		{Timestamp: 300, Close: 3.3},
		{Timestamp: 200, Close: -2},
		{Timestamp: 0, Close: 5},
	})

	assert.Equal(t, []domain.PricePoint{
		{Time: 100, Value: 1},
		{Time: 300, Value: 3.3},
	}, points)
}
