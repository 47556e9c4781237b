// Package chart runs the lifecycle of one live price chart: backfill, render
// setup, live transport and tick animation, and teardown.
package chart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"solana-price-chart/internal/animation"
	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/eventloop"
	"solana-price-chart/internal/observability"
	"solana-price-chart/internal/render"
	"solana-price-chart/internal/theme"
)

// HistoryLoader loads the backfill series for a pool.
type HistoryLoader interface {
	Load(ctx context.Context, pool string) ([]domain.PricePoint, error)
}

// Feed is a live tick transport.
type Feed interface {
	Start() error
	Stop()
	State() domain.TransportState
}

// FeedFactory builds the transport for one mount cycle.
type FeedFactory func(token domain.TokenIdentity, onTick func(domain.Tick), onState func(from, to domain.TransportState)) Feed

// SurfaceFactory hands out a fresh host surface for one mount cycle.
type SurfaceFactory func() render.Surface

// Options holds Controller dependencies.
type Options struct {
	Loop     eventloop.Loop
	History  HistoryLoader
	Feeds    FeedFactory
	Surfaces SurfaceFactory
	Theme    *theme.Signal

	Render    render.Options
	Animation animation.Policy
	Logger    zerolog.Logger
}

// Controller mounts and tears down one chart. Each mount cycle gets a new
// generation; callbacks from an older generation are ignored.
// All methods must be called on the loop.
type Controller struct {
	id       uuid.UUID
	loop     eventloop.Loop
	history  HistoryLoader
	feeds    FeedFactory
	surfaces SurfaceFactory
	theme    *theme.Signal
	render   render.Options
	policy   animation.Policy
	logger   zerolog.Logger

	gen      uint64
	mounted  bool
	token    domain.TokenIdentity
	status   Status
	tstate   domain.TransportState
	lastTick int64

	cancelLoad   context.CancelFunc
	engine       *render.Engine
	interp       *animation.Interpolator
	feed         Feed
	unwatchTheme func()
}

// NewController creates an idle controller.
func NewController(opts Options) *Controller {
	id := uuid.New()
	sig := opts.Theme
	if sig == nil {
		sig = theme.NewSignal(true)
	}
	ro := opts.Render
	ro.Logger = opts.Logger

	return &Controller{
		id:       id,
		loop:     opts.Loop,
		history:  opts.History,
		feeds:    opts.Feeds,
		surfaces: opts.Surfaces,
		theme:    sig,
		render:   ro,
		policy:   opts.Animation,
		logger:   opts.Logger.With().Str("chart", id.String()).Logger(),
		status:   Status{Phase: PhaseIdle},
	}
}

// ID returns the controller's unique id.
func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Status returns the current lifecycle status.
func (c *Controller) Status() Status {
	return c.status
}

// Token returns the mounted token identity.
func (c *Controller) Token() domain.TokenIdentity {
	return c.token
}

// TransportState returns the state of the live transport.
func (c *Controller) TransportState() domain.TransportState {
	return c.tstate
}

// Live reports whether ticks are arriving over the WebSocket.
func (c *Controller) Live() bool {
	return c.tstate == domain.TransportLive
}

// Engine returns the current render engine, nil before backfill completes.
func (c *Controller) Engine() *render.Engine {
	return c.engine
}

// SetToken mounts token unless it is already the mounted identity.
func (c *Controller) SetToken(token domain.TokenIdentity) error {
	if c.mounted && c.token == token {
		return nil
	}
	return c.Mount(token)
}

// Mount starts a fresh mount cycle for token, tearing down any current one.
// A missing or invalid identity puts the chart in PhaseError and returns
// the validation error. Backfill runs asynchronously.
func (c *Controller) Mount(token domain.TokenIdentity) error {
	c.teardown()

	c.gen++
	gen := c.gen
	c.mounted = true
	c.token = token
	observability.ChartMounted(1)

	if err := token.Validate(); err != nil {
		c.fail(MsgMissingToken, "token", err)
		return err
	}

	c.setStatus(Status{Phase: PhaseLoading, Token: token})

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelLoad = cancel
	c.loop.Go(func() {
		points, err := c.history.Load(ctx, token.Pool)
		c.loop.Post(func() { c.onBackfill(gen, points, err) })
	})
	return nil
}

// Unmount tears the chart down. Safe to call more than once.
func (c *Controller) Unmount() {
	c.teardown()
}

func (c *Controller) onBackfill(gen uint64, points []domain.PricePoint, err error) {
	if gen != c.gen {
		return
	}
	c.cancelLoad = nil

	if err != nil {
		c.fail(MsgBackfillFailed, "backfill", err)
		return
	}

	palette := theme.Resolve(c.theme.Dark())
	c.engine = render.NewEngine(c.loop, c.surfaces(), palette, c.render)
	c.engine.WaitReady(func(err error) {
		c.onReady(gen, points, err)
	})
}

func (c *Controller) onReady(gen uint64, points []domain.PricePoint, err error) {
	if gen != c.gen {
		return
	}
	if err != nil {
		c.fail(MsgContainerNotReady, "container", err)
		return
	}

	if err := c.engine.SetSeries(points); err != nil {
		c.fail(MsgBackfillFailed, "backfill", err)
		return
	}

	// The theme may have flipped while the backfill was in flight.
	if p := theme.Resolve(c.theme.Dark()); p != c.engine.Palette() {
		c.engine.ApplyTheme(p)
	}
	c.unwatchTheme = c.theme.Subscribe(func(dark bool) {
		if gen != c.gen || c.engine == nil {
			return
		}
		c.engine.ApplyTheme(theme.Resolve(dark))
	})

	c.interp = animation.NewInterpolator(c.loop, c.engine, animation.Options{
		Policy: c.policy,
		Logger: c.logger,
	})
	if last, ok := c.engine.Last(); ok {
		c.interp.Seed(last.Value)
		c.lastTick = last.Time
	}

	c.feed = c.feeds(c.token,
		func(tick domain.Tick) { c.onTick(gen, tick) },
		func(from, to domain.TransportState) { c.onTransportState(gen, to) },
	)
	if err := c.feed.Start(); err != nil {
		c.logger.Warn().Err(err).Msg("transport start failed")
	}

	c.setStatus(Status{Phase: PhaseReady, Token: c.token})
	observability.RecordMount("ok")
	c.logger.Info().
		Str("token", c.token.String()).
		Int("points", len(points)).
		Msg("chart mounted")
}

func (c *Controller) onTick(gen uint64, tick domain.Tick) {
	if gen != c.gen || c.interp == nil {
		return
	}
	if err := tick.Validate(); err != nil {
		observability.RecordTickDropped("invalid")
		c.logger.Debug().Err(err).Msg("dropping tick")
		return
	}
	if tick.Time < c.lastTick {
		observability.RecordTickDropped("stale")
		c.logger.Debug().Int64("time", tick.Time).Int64("last", c.lastTick).Msg("dropping out of order tick")
		return
	}

	c.lastTick = tick.Time
	c.interp.Animate(tick.Price, tick.Time)
}

func (c *Controller) onTransportState(gen uint64, to domain.TransportState) {
	if gen != c.gen {
		return
	}
	c.tstate = to
}

// teardown releases everything the current cycle holds, in order: animation
// frame, transport, theme watch, then the render surface.
func (c *Controller) teardown() {
	if !c.mounted {
		return
	}
	c.mounted = false
	c.gen++

	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	if c.interp != nil {
		c.interp.Cancel()
		c.interp = nil
	}
	if c.feed != nil {
		c.feed.Stop()
		c.feed = nil
	}
	if c.unwatchTheme != nil {
		c.unwatchTheme()
		c.unwatchTheme = nil
	}
	if c.engine != nil {
		c.engine.Release()
		c.engine = nil
	}

	c.lastTick = 0
	c.tstate = domain.TransportIdle
	observability.ChartMounted(-1)
	c.setStatus(Status{Phase: PhaseIdle})
	c.logger.Debug().Str("token", c.token.String()).Msg("chart unmounted")
}

func (c *Controller) fail(message, kind string, err error) {
	c.setStatus(Status{Phase: PhaseError, Message: message, Err: err, Token: c.token})
	observability.RecordChartError(kind)
	observability.RecordMount(kind + "_error")

	ev := c.logger.Error()
	if errors.Is(err, domain.ErrMissingPool) || errors.Is(err, domain.ErrMissingMint) {
		ev = c.logger.Warn()
	}
	ev.Err(err).Str("token", c.token.String()).Msg(message)
}

func (c *Controller) setStatus(s Status) {
	c.status = s
}
