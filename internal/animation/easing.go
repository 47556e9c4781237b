// Package animation turns discrete price ticks into smooth transitions of the
// last chart point.
package animation

import (
	"math"
	"time"
)

// EaseOutQuad decelerates towards the end. t is clamped to [0, 1].
func EaseOutQuad(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return 1 - (1-t)*(1-t)
}

// Policy maps the size of a move to an animation duration.
type Policy struct {
	Min        time.Duration
	Max        time.Duration
	PerPercent time.Duration // added per percent of change
}

// DefaultPolicy animates small ticks in 200ms and large moves in up to 600ms.
func DefaultPolicy() Policy {
	return Policy{
		Min:        200 * time.Millisecond,
		Max:        600 * time.Millisecond,
		PerPercent: 40 * time.Millisecond,
	}
}

// Duration returns the animation length for a move from -> to.
func (p Policy) Duration(from, to float64) time.Duration {
	if from <= 0 || math.IsNaN(from) || math.IsInf(from, 0) {
		return p.Min
	}
	pct := math.Abs(to-from) / from * 100
	if math.IsNaN(pct) {
		return p.Min
	}

	extra := pct * float64(p.PerPercent)
	if extra >= float64(p.Max-p.Min) {
		return p.Max
	}
	d := p.Min + time.Duration(extra)
	if d > p.Max {
		return p.Max
	}
	return d
}

// Animation is one interpolation of the point at Time from From to To.
type Animation struct {
	From     float64
	To       float64
	Time     int64
	Start    time.Time
	Duration time.Duration
}

// Step returns the value to display at now. Once elapsed reaches the
// duration it returns exactly To and done.
func (a Animation) Step(now time.Time) (value float64, done bool) {
	elapsed := now.Sub(a.Start)
	if a.Duration <= 0 || elapsed >= a.Duration {
		return a.To, true
	}
	if elapsed < 0 {
		elapsed = 0
	}
	t := float64(elapsed) / float64(a.Duration)
	return a.From + (a.To-a.From)*EaseOutQuad(t), false
}
