package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeries_UpsertAppendsAndReplaces(t *testing.T) {
	s := NewSeries(0)
	require.NoError(t, s.Replace([]PricePoint{{Time: 100, Value: 1}, {Time: 200, Value: 2}}))

	res, err := s.Upsert(PricePoint{Time: 300, Value: 3})
	require.NoError(t, err)
	assert.True(t, res.Appended)
	assert.Equal(t, 3, s.Len())

	res, err = s.Upsert(PricePoint{Time: 300, Value: 3.5})
	require.NoError(t, err)
	assert.False(t, res.Appended)
	assert.Equal(t, 3, s.Len())

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, PricePoint{Time: 300, Value: 3.5}, last)
}

func TestSeries_RejectsOlderPoint(t *testing.T) {
	s := NewSeries(0)
	require.NoError(t, s.Replace([]PricePoint{{Time: 100, Value: 1}, {Time: 200, Value: 2}}))

	_, err := s.Upsert(PricePoint{Time: 150, Value: 9})
	assert.True(t, errors.Is(err, ErrOutOfOrder))
	assert.Equal(t, 2, s.Len())
}

func TestSeries_RejectsInvalidPoint(t *testing.T) {
	s := NewSeries(0)

	_, err := s.Upsert(PricePoint{Time: 0, Value: 1})
	assert.ErrorIs(t, err, ErrInvalidPoint)

	_, err = s.Upsert(PricePoint{Time: 10, Value: -1})
	assert.ErrorIs(t, err, ErrInvalidPoint)
	assert.Equal(t, 0, s.Len())
}

func TestSeries_ReplaceRequiresStrictOrder(t *testing.T) {
	s := NewSeries(0)

	err := s.Replace([]PricePoint{{Time: 100, Value: 1}, {Time: 100, Value: 2}})
	assert.ErrorIs(t, err, ErrOutOfOrder)

	err = s.Replace([]PricePoint{{Time: 200, Value: 1}, {Time: 100, Value: 2}})
	assert.ErrorIs(t, err, ErrOutOfOrder)
	assert.Equal(t, 0, s.Len())
}

func TestSeries_AppendedTimesStrictlyIncrease(t *testing.T) {
	s := NewSeries(0)
	times := []int64{10, 10, 20, 15, 20, 30, 5, 40}

	for _, ts := range times {
		_, _ = s.Upsert(PricePoint{Time: ts, Value: 1})
	}

	points := s.Points()
	for i := 1; i < len(points); i++ {
		assert.Greater(t, points[i].Time, points[i-1].Time)
	}
	assert.Len(t, points, 4)
}

func TestSeries_CapTrimsInChunks(t *testing.T) {
	s := NewSeries(10)

	trimmed := 0
	for i := int64(1); i <= 25; i++ {
		res, err := s.Upsert(PricePoint{Time: i, Value: float64(i)})
		require.NoError(t, err)
		if res.Trimmed {
			trimmed++
		}
	}

	// chunk = cap when cap < default chunk: trims at 20 points back to 10
	assert.Equal(t, 1, trimmed)
	assert.Equal(t, 15, s.Len())

	first := s.Points()[0]
	assert.Equal(t, int64(11), first.Time)
}

func TestSeries_ReplaceKeepsNewestWhenOverCap(t *testing.T) {
	s := NewSeries(3)
	require.NoError(t, s.Replace([]PricePoint{
		{Time: 1, Value: 1}, {Time: 2, Value: 2}, {Time: 3, Value: 3}, {Time: 4, Value: 4},
	}))

	points := s.Points()
	require.Len(t, points, 3)
	assert.Equal(t, int64(2), points[0].Time)
}

func TestSeries_PointsIsCopy(t *testing.T) {
	s := NewSeries(0)
	require.NoError(t, s.Replace([]PricePoint{{Time: 1, Value: 1}}))

	p := s.Points()
	p[0].Value = 42

	last, _ := s.Last()
	assert.Equal(t, 1.0, last.Value)

	s.Reset()
	assert.Equal(t, 0, s.Len())
	_, ok := s.Last()
	assert.False(t, ok)
}
