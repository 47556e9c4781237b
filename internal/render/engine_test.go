package render

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/eventloop"
	"solana-price-chart/internal/theme"
)

var start = time.Unix(1700000000, 0)

func points(n int, startTime int64) []domain.PricePoint {
	out := make([]domain.PricePoint, n)
	for i := range out {
		out[i] = domain.PricePoint{Time: startTime + int64(i)*300, Value: 0.001 + float64(i)*1e-5}
	}
	return out
}

func newEngine(t *testing.T, w, h int, opts Options) (*eventloop.ManualLoop, *HeadlessSurface, *Engine) {
	t.Helper()
	loop := eventloop.NewManual(start)
	surface := NewHeadlessSurface(w, h)
	opts.Logger = zerolog.Nop()
	return loop, surface, NewEngine(loop, surface, theme.Resolve(true), opts)
}

func TestEngine_WaitReadyImmediate(t *testing.T) {
	_, surface, engine := newEngine(t, 800, 400, Options{})

	var got error
	called := 0
	engine.WaitReady(func(err error) { called++; got = err })

	require.Equal(t, 1, called)
	require.NoError(t, got)
	snap := surface.Snapshot()
	assert.Equal(t, theme.Resolve(true), snap.Palette)
	assert.Equal(t, 1, snap.Listeners)
}

func TestEngine_WaitReadyAfterLayout(t *testing.T) {
	loop, surface, engine := newEngine(t, 0, 0, Options{})

	var got error
	called := 0
	engine.WaitReady(func(err error) { called++; got = err })
	assert.Zero(t, called)

	loop.Advance(120 * time.Millisecond)
	assert.Zero(t, called)

	surface.SetSize(640, 320)
	loop.Advance(50 * time.Millisecond)
	require.Equal(t, 1, called)
	assert.NoError(t, got)
}

func TestEngine_WaitReadyTimesOut(t *testing.T) {
	loop, _, engine := newEngine(t, 0, 300, Options{ReadyAttempts: 5, ReadyInterval: 10 * time.Millisecond})

	var got error
	called := 0
	engine.WaitReady(func(err error) { called++; got = err })

	loop.Advance(time.Second)
	require.Equal(t, 1, called)
	assert.True(t, errors.Is(got, ErrContainerNotReady))
	assert.Zero(t, loop.PendingTimers())
}

func TestEngine_ReleaseStopsReadyPolling(t *testing.T) {
	loop, _, engine := newEngine(t, 0, 0, Options{})

	called := 0
	engine.WaitReady(func(error) { called++ })
	engine.Release()

	loop.Advance(5 * time.Second)
	assert.Zero(t, called)
	assert.Zero(t, loop.PendingTimers())
}

func TestEngine_SetSeries(t *testing.T) {
	_, surface, engine := newEngine(t, 800, 400, Options{})
	pts := points(100, 1700000000)

	require.NoError(t, engine.SetSeries(pts))

	snap := surface.Snapshot()
	assert.Equal(t, pts, snap.Points)
	assert.Equal(t, 1, snap.SetDataCalls)
	assert.Equal(t, 1, snap.FitCalls)
	assert.Equal(t, FormatPrice(pts[99].Value), snap.PriceLabel)
}

func TestEngine_SetSeriesRejectsUnordered(t *testing.T) {
	_, surface, engine := newEngine(t, 800, 400, Options{})
	pts := points(3, 1700000000)
	pts[2].Time = pts[0].Time

	assert.ErrorIs(t, engine.SetSeries(pts), domain.ErrOutOfOrder)
	assert.Zero(t, surface.Snapshot().SetDataCalls)
}

func TestEngine_UpdateInPlaceAndAppend(t *testing.T) {
	_, surface, engine := newEngine(t, 800, 400, Options{})
	require.NoError(t, engine.SetSeries(points(2, 1700000000)))

	last, _ := engine.Last()
	require.NoError(t, engine.Update(domain.PricePoint{Time: last.Time, Value: 0.5}))
	snap := surface.Snapshot()
	assert.Len(t, snap.Points, 2)
	assert.Equal(t, 0.5, snap.Points[1].Value)
	assert.Zero(t, snap.ScrollCalls)

	require.NoError(t, engine.Update(domain.PricePoint{Time: last.Time + 60, Value: 0.6}))
	snap = surface.Snapshot()
	assert.Len(t, snap.Points, 3)
	assert.Equal(t, 1, snap.ScrollCalls)

	assert.ErrorIs(t, engine.Update(domain.PricePoint{Time: last.Time - 1, Value: 0.7}), domain.ErrOutOfOrder)
	assert.Len(t, engine.Points(), 3)
}

func TestEngine_UpdateAfterTrimResendsSeries(t *testing.T) {
	_, surface, engine := newEngine(t, 800, 400, Options{SeriesCap: 10})
	require.NoError(t, engine.SetSeries(points(10, 1700000000)))

	last, _ := engine.Last()
	for i := int64(1); i <= 10; i++ {
		require.NoError(t, engine.Update(domain.PricePoint{Time: last.Time + i*60, Value: 1}))
	}

	snap := surface.Snapshot()
	assert.Len(t, engine.Points(), 10)
	assert.Equal(t, engine.Points(), snap.Points)
	assert.Equal(t, 2, snap.SetDataCalls)
}

func TestEngine_ThemeToggleRestoresPalette(t *testing.T) {
	_, surface, engine := newEngine(t, 800, 400, Options{})
	engine.WaitReady(func(error) {})
	require.NoError(t, engine.SetSeries(points(5, 1700000000)))
	original := surface.Snapshot().Palette

	engine.ApplyTheme(theme.Resolve(false))
	assert.Equal(t, theme.Resolve(false), surface.Snapshot().Palette)
	engine.ApplyTheme(theme.Resolve(true))

	snap := surface.Snapshot()
	assert.Equal(t, original, snap.Palette)
	assert.Len(t, snap.Points, 5)
}

func TestEngine_ResizeFollowsContainer(t *testing.T) {
	loop, surface, engine := newEngine(t, 800, 400, Options{})
	engine.WaitReady(func(error) {})

	surface.SetSize(1024, 512)
	loop.Drain()
	w, h := surface.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 512, h)

	engine.Resize(0, 0)
	w, h = surface.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 512, h)
}

func TestEngine_ReleaseIdempotent(t *testing.T) {
	loop, surface, engine := newEngine(t, 800, 400, Options{})
	engine.WaitReady(func(error) {})
	require.NoError(t, engine.SetSeries(points(5, 1700000000)))

	engine.Release()
	engine.Release()

	snap := surface.Snapshot()
	assert.True(t, snap.Released)
	assert.Zero(t, snap.Listeners)
	assert.Empty(t, engine.Points())
	assert.True(t, engine.Released())

	assert.ErrorIs(t, engine.Update(domain.PricePoint{Time: 1800000000, Value: 1}), ErrReleased)
	assert.ErrorIs(t, engine.SetSeries(points(1, 1700000000)), ErrReleased)
	engine.ApplyTheme(theme.Resolve(false))
	surface.SetSize(10, 10)
	loop.Drain()
	assert.Equal(t, theme.Resolve(true), surface.Snapshot().Palette)
}
