package animation

import (
	"time"

	"github.com/rs/zerolog"

	"solana-price-chart/internal/domain"
	"solana-price-chart/internal/eventloop"
	"solana-price-chart/internal/observability"
)

// Sink receives animation frames.
type Sink interface {
	// Update upserts the point; repeated times mutate the last point.
	Update(p domain.PricePoint) error
	// SetPriceLabel shows the final price of a finished animation.
	SetPriceLabel(price float64)
}

// Options configures an Interpolator.
type Options struct {
	Policy Policy
	Logger zerolog.Logger
}

// Interpolator runs at most one animation at a time. A new target cancels
// the running animation and starts from the value currently on screen.
// All methods must be called on the loop.
type Interpolator struct {
	loop   eventloop.Loop
	sink   Sink
	policy Policy
	logger zerolog.Logger

	displayed float64
	seeded    bool
	current   *Animation
	frame     *eventloop.Handle
}

// NewInterpolator creates an interpolator drawing into sink.
func NewInterpolator(loop eventloop.Loop, sink Sink, opts Options) *Interpolator {
	policy := opts.Policy
	if policy.Max <= 0 {
		policy = DefaultPolicy()
	}
	return &Interpolator{
		loop:   loop,
		sink:   sink,
		policy: policy,
		logger: opts.Logger,
	}
}

// Seed sets the displayed value without animating, normally to the last
// backfilled close.
func (i *Interpolator) Seed(value float64) {
	i.displayed = value
	i.seeded = value > 0
}

// Displayed returns the value currently on screen.
func (i *Interpolator) Displayed() float64 {
	return i.displayed
}

// Active reports whether an animation frame is pending.
func (i *Interpolator) Active() bool {
	return i.current != nil
}

// Animate moves the point at time at towards to.
func (i *Interpolator) Animate(to float64, at int64) {
	if prev := i.current; prev != nil {
		i.frame.Cancel()
		i.frame = nil
		i.current = nil
		// Leave the superseded point at its exact target.
		if prev.Time != at {
			if err := i.sink.Update(domain.PricePoint{Time: prev.Time, Value: prev.To}); err != nil {
				i.logger.Debug().Err(err).Int64("time", prev.Time).Msg("commit superseded target")
			}
		}
	}

	from := i.displayed
	if !i.seeded {
		from = to
		i.seeded = true
	}

	anim := &Animation{
		From:     from,
		To:       to,
		Time:     at,
		Start:    i.loop.Now(),
		Duration: i.policy.Duration(from, to),
	}
	i.current = anim
	i.frame = i.loop.RequestFrame(i.step)
	observability.RecordAnimation()
}

// Cancel drops the running animation without writing its target.
func (i *Interpolator) Cancel() {
	i.frame.Cancel()
	i.frame = nil
	i.current = nil
}

func (i *Interpolator) step(now time.Time) {
	anim := i.current
	if anim == nil {
		return
	}

	value, done := anim.Step(now)
	if err := i.sink.Update(domain.PricePoint{Time: anim.Time, Value: value}); err != nil {
		i.logger.Warn().Err(err).Int64("time", anim.Time).Msg("animation frame rejected")
		i.Cancel()
		return
	}
	i.displayed = value

	if done {
		i.current = nil
		i.frame = nil
		i.sink.SetPriceLabel(anim.To)
		return
	}
	i.frame = i.loop.RequestFrame(i.step)
}
