package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"solana-price-chart/internal/chart"
	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/eventloop"
	"solana-price-chart/internal/render"
	"solana-price-chart/internal/theme"
)

// TokenResolver resolves and remembers chart identities.
type TokenResolver interface {
	Resolve(ctx context.Context, mint string) (domain.TokenIdentity, error)
	Remember(ctx context.Context, id domain.TokenIdentity)
}

// AppConfig holds App dependencies.
type AppConfig struct {
	Loop     *eventloop.EventLoop
	Resolver TokenResolver
	History  chart.HistoryLoader
	Feeds    chart.FeedFactory
	Theme    *theme.Signal
	Width    int
	Height   int
	Render   render.Options
	Logger   zerolog.Logger
}

// App owns one chart controller on an event loop and exposes it to HTTP
// handlers, which run on their own goroutines.
type App struct {
	loop     *eventloop.EventLoop
	resolver TokenResolver
	signal   *theme.Signal
	ctrl     *chart.Controller
	surface  atomic.Pointer[render.HeadlessSurface]
	logger   zerolog.Logger
}

// StatusView is the JSON shape of GET /status.
type StatusView struct {
	ID        string `json:"id"`
	Phase     string `json:"phase"`
	Message   string `json:"message,omitempty"`
	Mint      string `json:"mint,omitempty"`
	Pool      string `json:"pool,omitempty"`
	Transport string `json:"transport"`
	Live      bool   `json:"live"`
	LastPrice string `json:"last_price,omitempty"`
	LastTime  int64  `json:"last_time,omitempty"`
	Points    int    `json:"points"`
	Dark      bool   `json:"dark"`
}

// NewApp creates the app and its controller.
func NewApp(cfg AppConfig) *App {
	a := &App{
		loop:     cfg.Loop,
		resolver: cfg.Resolver,
		signal:   cfg.Theme,
		logger:   cfg.Logger,
	}

	a.ctrl = chart.NewController(chart.Options{
		Loop:    cfg.Loop,
		History: cfg.History,
		Feeds:   cfg.Feeds,
		Theme:   cfg.Theme,
		Render:  cfg.Render,
		Logger:  cfg.Logger,
		Surfaces: func() render.Surface {
			s := render.NewHeadlessSurface(cfg.Width, cfg.Height)
			a.surface.Store(s)
			return s
		},
	})
	return a
}

// Open resolves the token and mounts it. An explicit pool skips resolution.
func (a *App) Open(ctx context.Context, mint, pool string) error {
	var id domain.TokenIdentity
	if pool != "" {
		id = domain.TokenIdentity{Mint: mint, Pool: pool}
		if err := id.Validate(); err != nil {
			return err
		}
		a.resolver.Remember(ctx, id)
	} else {
		resolved, err := a.resolver.Resolve(ctx, mint)
		if err != nil {
			return err
		}
		id = resolved
	}

	var mountErr error
	if err := a.loop.Call(ctx, func() { mountErr = a.ctrl.SetToken(id) }); err != nil {
		return fmt.Errorf("mount %s: %w", id, err)
	}
	return mountErr
}

// Close unmounts the chart.
func (a *App) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.loop.Call(ctx, a.ctrl.Unmount); err != nil {
		a.logger.Warn().Err(err).Msg("unmount on shutdown")
	}
}

// Status reads the chart status on the loop.
func (a *App) Status(ctx context.Context) (StatusView, error) {
	var view StatusView
	err := a.loop.Call(ctx, func() {
		st := a.ctrl.Status()
		view = StatusView{
			ID:        a.ctrl.ID().String(),
			Phase:     st.Phase.String(),
			Message:   st.Message,
			Mint:      a.ctrl.Token().Mint,
			Pool:      a.ctrl.Token().Pool,
			Transport: a.ctrl.TransportState().String(),
			Live:      a.ctrl.Live(),
			Dark:      a.signal.Dark(),
		}
		if eng := a.ctrl.Engine(); eng != nil {
			if last, ok := eng.Last(); ok {
				view.LastPrice = render.FormatPrice(last.Value)
				view.LastTime = last.Time
			}
			view.Points = len(eng.Points())
		}
	})
	return view, err
}

// SetDark flips the theme on the loop so subscribed charts react in the
// same task.
func (a *App) SetDark(ctx context.Context, dark bool) error {
	return a.loop.Call(ctx, func() { a.signal.Set(dark) })
}

// Snapshot returns the current surface state.
func (a *App) Snapshot() (render.Snapshot, bool) {
	s := a.surface.Load()
	if s == nil {
		return render.Snapshot{}, false
	}
	return s.Snapshot(), true
}
