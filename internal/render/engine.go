package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/eventloop"
	"solana-price-chart/internal/observability"
	"solana-price-chart/internal/theme"
)

const (
	DefaultReadyAttempts = 20
	DefaultReadyInterval = 50 * time.Millisecond
)

var (
	// ErrContainerNotReady means the surface never reported a usable size.
	ErrContainerNotReady = errors.New("chart container not ready")
	// ErrReleased is returned by calls on a released engine.
	ErrReleased = errors.New("render engine released")
)

// Options configures an Engine.
type Options struct {
	ReadyAttempts int
	ReadyInterval time.Duration
	SeriesCap     int
	Logger        zerolog.Logger
}

// Engine owns one series and keeps the surface in sync with it.
// All methods must be called on the loop.
type Engine struct {
	loop    eventloop.Loop
	surface Surface
	series  *domain.Series
	palette theme.Palette
	logger  zerolog.Logger

	readyAttempts int
	readyInterval time.Duration
	readyTimer    *eventloop.Handle
	detachResize  func()
	released      bool
}

// NewEngine creates an engine drawing onto surface with palette.
func NewEngine(loop eventloop.Loop, surface Surface, palette theme.Palette, opts Options) *Engine {
	if opts.ReadyAttempts <= 0 {
		opts.ReadyAttempts = DefaultReadyAttempts
	}
	if opts.ReadyInterval <= 0 {
		opts.ReadyInterval = DefaultReadyInterval
	}
	if opts.SeriesCap <= 0 {
		opts.SeriesCap = domain.DefaultSeriesCap
	}

	return &Engine{
		loop:          loop,
		surface:       surface,
		series:        domain.NewSeries(opts.SeriesCap),
		palette:       palette,
		logger:        opts.Logger,
		readyAttempts: opts.ReadyAttempts,
		readyInterval: opts.ReadyInterval,
	}
}

// WaitReady polls the surface size until it is non-zero, then applies the
// palette and size and starts following container resizes. cb receives nil
// or an error wrapping ErrContainerNotReady. The first check is synchronous.
func (e *Engine) WaitReady(cb func(error)) {
	e.checkReady(1, cb)
}

func (e *Engine) checkReady(attempt int, cb func(error)) {
	e.readyTimer = nil
	if e.released {
		return
	}

	w, h := e.surface.Size()
	if w > 0 && h > 0 {
		e.attach(w, h)
		cb(nil)
		return
	}

	if attempt >= e.readyAttempts {
		cb(fmt.Errorf("%w: size %dx%d after %d attempts", ErrContainerNotReady, w, h, attempt))
		return
	}
	e.readyTimer = e.loop.AfterFunc(e.readyInterval, func() {
		e.checkReady(attempt+1, cb)
	})
}

func (e *Engine) attach(w, h int) {
	e.surface.ApplyOptions(e.palette)
	e.surface.Resize(w, h)
	e.detachResize = e.surface.OnResize(func(width, height int) {
		e.loop.Post(func() { e.Resize(width, height) })
	})
}

// SetSeries replaces the series and fits the view to it.
func (e *Engine) SetSeries(points []domain.PricePoint) error {
	if e.released {
		return ErrReleased
	}
	if err := e.series.Replace(points); err != nil {
		return err
	}

	e.surface.SetData(e.series.Points())
	e.surface.FitContent()
	if last, ok := e.series.Last(); ok {
		e.SetPriceLabel(last.Value)
	}
	observability.RecordFrame()
	return nil
}

// Update upserts p. Appends scroll the view to the newest point.
func (e *Engine) Update(p domain.PricePoint) error {
	if e.released {
		return ErrReleased
	}

	res, err := e.series.Upsert(p)
	if err != nil {
		return err
	}

	if res.Trimmed {
		e.surface.SetData(e.series.Points())
	} else {
		e.surface.Update(p)
	}
	if res.Appended {
		e.surface.ScrollToRealTime()
	}
	observability.RecordFrame()
	return nil
}

// ApplyTheme re-applies every visual option without touching the series.
func (e *Engine) ApplyTheme(p theme.Palette) {
	if e.released {
		return
	}
	e.palette = p
	e.surface.ApplyOptions(p)
}

// Resize applies new container dimensions. Zero sizes are ignored.
func (e *Engine) Resize(width, height int) {
	if e.released || width <= 0 || height <= 0 {
		return
	}
	e.surface.Resize(width, height)
}

// SetPriceLabel shows price on the price label.
func (e *Engine) SetPriceLabel(price float64) {
	if e.released {
		return
	}
	e.surface.SetPriceLabel(FormatPrice(price))
}

// Release detaches listeners, drops the series and frees the surface.
// Safe to call more than once.
func (e *Engine) Release() {
	if e.released {
		return
	}
	e.released = true

	e.readyTimer.Cancel()
	e.readyTimer = nil
	if e.detachResize != nil {
		e.detachResize()
		e.detachResize = nil
	}
	e.series.Reset()
	e.surface.Release()
}

// Released reports whether Release was called.
func (e *Engine) Released() bool {
	return e.released
}

// Points returns a copy of the series.
func (e *Engine) Points() []domain.PricePoint {
	return e.series.Points()
}

// Last returns the newest point.
func (e *Engine) Last() (domain.PricePoint, bool) {
	return e.series.Last()
}

// Palette returns the applied palette.
func (e *Engine) Palette() theme.Palette {
	return e.palette
}
