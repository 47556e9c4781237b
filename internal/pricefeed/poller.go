package pricefeed

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"solana-price-chart/internal/eventloop"
	"solana-price-chart/internal/observability"
)

// PriceSource fetches the latest price of a pool.
type PriceSource interface {
	LatestPrice(ctx context.Context, pool string) (float64, error)
}

// Poller fetches the latest price on a fixed interval. The first poll runs
// immediately. All callbacks run on the loop.
type Poller struct {
	loop     eventloop.Loop
	prices   PriceSource
	pool     string
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger

	onPrice func(price float64, at time.Time)

	ctx      context.Context
	cancel   context.CancelFunc
	timer    *eventloop.Handle
	inflight bool
	running  bool
}

// NewPoller creates a poller for pool.
func NewPoller(loop eventloop.Loop, prices PriceSource, pool string, interval, timeout time.Duration, logger zerolog.Logger, onPrice func(price float64, at time.Time)) *Poller {
	if timeout <= 0 || timeout > interval {
		timeout = interval
	}
	return &Poller{
		loop:     loop,
		prices:   prices,
		pool:     pool,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		onPrice:  onPrice,
	}
}

// Start polls once now and then every interval.
func (p *Poller) Start() {
	if p.running {
		return
	}
	p.running = true
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.tick()
}

// Stop clears the timer and abandons any in-flight fetch.
func (p *Poller) Stop() {
	if !p.running {
		return
	}
	p.running = false
	p.timer.Cancel()
	p.timer = nil
	p.cancel()
}

func (p *Poller) tick() {
	if !p.running {
		return
	}
	p.timer = p.loop.AfterFunc(p.interval, p.tick)

	if p.inflight {
		observability.RecordPoll("skipped")
		return
	}
	p.inflight = true

	ctx := p.ctx
	p.loop.Go(func() {
		fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
		price, err := p.prices.LatestPrice(fetchCtx, p.pool)
		cancel()

		p.loop.Post(func() { p.finish(ctx, price, err) })
	})
}

func (p *Poller) finish(ctx context.Context, price float64, err error) {
	p.inflight = false
	if !p.running || ctx != p.ctx {
		return
	}
	if err != nil {
		// The last good price stays on screen until the next poll.
		observability.RecordPoll("error")
		p.logger.Warn().Err(err).Str("pool", p.pool).Msg("poll failed")
		return
	}
	observability.RecordPoll("ok")
	p.onPrice(price, p.loop.Now())
}
