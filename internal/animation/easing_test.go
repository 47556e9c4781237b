package animation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEaseOutQuad(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutQuad(-1))
	assert.Equal(t, 0.0, EaseOutQuad(0))
	assert.Equal(t, 0.75, EaseOutQuad(0.5))
	assert.Equal(t, 1.0, EaseOutQuad(1))
	assert.Equal(t, 1.0, EaseOutQuad(2))
}

func TestPolicy_Duration(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name     string
		from, to float64
		want     time.Duration
	}{
		{"no change", 1, 1, 200 * time.Millisecond},
		{"tiny tick", 1, 1.001, 204 * time.Millisecond},
		{"five percent", 1, 1.05, 400 * time.Millisecond},
		{"large move clamps", 1, 2, 600 * time.Millisecond},
		{"drop clamps", 1, 0.01, 600 * time.Millisecond},
		{"zero from", 0, 1, 200 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Duration(tt.from, tt.to)
			assert.InDelta(t, float64(tt.want), float64(got), float64(time.Millisecond))
			assert.GreaterOrEqual(t, got, p.Min)
			assert.LessOrEqual(t, got, p.Max)
		})
	}
}

func TestAnimation_ConvergesExactly(t *testing.T) {
	start := time.Unix(1700000000, 0)
	cases := []Animation{
		{From: 0.0001234, To: 0.0001299, Duration: 200 * time.Millisecond},
		{From: 0.1, To: 0.3, Duration: 333 * time.Millisecond},
		{From: 1e-9, To: 7e-9, Duration: 600 * time.Millisecond},
		{From: 42, To: 41.999999, Duration: 217 * time.Millisecond},
		{From: 5, To: 5, Duration: 0},
	}

	for _, anim := range cases {
		anim.Start = start
		now := start
		var value float64
		done := false
		for frames := 0; !done; frames++ {
			now = now.Add(16 * time.Millisecond)
			value, done = anim.Step(now)
			if !done {
				lo, hi := anim.From, anim.To
				if lo > hi {
					lo, hi = hi, lo
				}
				assert.GreaterOrEqual(t, value, lo)
				assert.LessOrEqual(t, value, hi)
			}
			if frames > 100 {
				t.Fatal("animation never finished")
			}
		}
		assert.Equal(t, anim.To, value)
	}
}
