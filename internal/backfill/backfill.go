// Package backfill loads the historical price series that seeds a chart.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/marketdata"
	"solana-price-chart/internal/observability"
)

// DefaultTimeout bounds a single backfill request.
const DefaultTimeout = 15 * time.Second

var (
	// ErrMissingPool is returned when no pool address was provided.
	ErrMissingPool = errors.New("pool address is required")

	// ErrNoCandles is returned when the API had no usable candles.
	ErrNoCandles = errors.New("no usable candles")
)

// Error wraps every backfill failure. It is terminal for a mount cycle.
type Error struct {
	Pool string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("backfill %s: %v", e.Pool, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CandleSource provides OHLCV candles for a pool.
type CandleSource interface {
	OHLCV(ctx context.Context, pool string, q marketdata.OHLCVQuery) ([]domain.Candle, error)
}

// Backfiller converts a bounded window of candles into a price series.
type Backfiller struct {
	source  CandleSource
	query   marketdata.OHLCVQuery
	timeout time.Duration
	logger  zerolog.Logger
}

// Options configures a Backfiller.
type Options struct {
	Query   marketdata.OHLCVQuery // Default: 100 five-minute USD candles
	Timeout time.Duration         // Default: 15s
	Logger  zerolog.Logger
}

// New creates a Backfiller reading from source.
func New(source CandleSource, opts Options) *Backfiller {
	query := opts.Query
	if query.Timeframe == "" {
		query = marketdata.DefaultOHLCVQuery()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Backfiller{
		source:  source,
		query:   query,
		timeout: timeout,
		logger:  opts.Logger,
	}
}

// Load fetches candles for pool and returns their close prices in chronological order.
// There are no retries; a failure is returned as *Error.
func (b *Backfiller) Load(ctx context.Context, pool string) ([]domain.PricePoint, error) {
	if pool == "" {
		return nil, &Error{Pool: pool, Err: ErrMissingPool}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	candles, err := b.source.OHLCV(ctx, pool, b.query)
	if err != nil {
		observability.RecordBackfill("error", time.Since(start).Seconds(), 0)
		return nil, &Error{Pool: pool, Err: err}
	}

	points := ClosePoints(candles)
	if len(points) == 0 {
		observability.RecordBackfill("empty", time.Since(start).Seconds(), 0)
		return nil, &Error{Pool: pool, Err: ErrNoCandles}
	}

	observability.RecordBackfill("success", time.Since(start).Seconds(), len(points))
	b.logger.Debug().
		Str("pool", pool).
		Int("candles", len(candles)).
		Int("points", len(points)).
		Dur("took", time.Since(start)).
		Msg("backfill loaded")

	return points, nil
}

// ClosePoints builds a strictly increasing series from candle closes.
// Unusable closes are skipped and duplicate timestamps keep the last candle seen.
func ClosePoints(candles []domain.Candle) []domain.PricePoint {
	byTime := make(map[int64]float64, len(candles))
	for _, c := range candles {
		if c.Timestamp <= 0 || c.Close <= 0 || math.IsNaN(c.Close) || math.IsInf(c.Close, 0) {
			continue
		}
		byTime[c.Timestamp] = c.Close
	}

	points := make([]domain.PricePoint, 0, len(byTime))
	for ts, v := range byTime {
		points = append(points, domain.PricePoint{Time: ts, Value: v})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Time < points[j].Time
	})
	return points
}
