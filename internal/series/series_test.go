package series

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNewTruncatesToShorterSlice(t *testing.T) {
	s := New("reserves", []time.Time{day(0), day(1), day(2)}, []float64{1, 2})
	assert.Equal(t, 2, s.Len(), "mismatched inputs should use the shorter run")
}

func TestLastValue(t *testing.T) {
	s := New("vix", []time.Time{day(0), day(1)}, []float64{15, 22.5})
	assert.Equal(t, 22.5, s.LastValue())

	assert.True(t, math.IsNaN(Empty("vix").LastValue()), "empty series should yield NaN")
}

func TestAsOf(t *testing.T) {
	s := New("tga", []time.Time{day(0), day(5), day(10)}, []float64{100, 200, 300})

	cut := s.AsOf(day(7))
	require.Equal(t, 2, cut.Len())
	assert.Equal(t, 200.0, cut.LastValue())

	// Zero time means no truncation.
	assert.Equal(t, 3, s.AsOf(time.Time{}).Len())

	// A cutoff before the first point leaves nothing.
	assert.True(t, s.AsOf(day(-1)).IsEmpty())
}

func TestAsOfDoesNotMutate(t *testing.T) {
	s := New("rrp", []time.Time{day(0), day(1)}, []float64{1, 2})
	_ = s.AsOf(day(0))
	assert.Equal(t, 2, s.Len())
}

func TestDerivedPreservesIndex(t *testing.T) {
	s := New("soma", []time.Time{day(0), day(1), day(2)}, []float64{1, 2, 3})
	d := s.Derived("soma_chg", []float64{math.NaN(), 1})

	require.Equal(t, s.Len(), d.Len())
	assert.Equal(t, s.At(2).Time, d.At(2).Time)
	assert.True(t, math.IsNaN(d.At(0).Value))
	assert.Equal(t, 1.0, d.At(1).Value)
	assert.True(t, math.IsNaN(d.At(2).Value), "values beyond the supplied slice should be NaN")
}

func TestAligned(t *testing.T) {
	a := New("a", []time.Time{day(0), day(1)}, []float64{1, 2})
	b := New("b", []time.Time{day(0), day(1)}, []float64{3, 4})
	c := New("c", []time.Time{day(0)}, []float64{5})

	assert.True(t, Aligned(a, b))
	assert.False(t, Aligned(a, c))
	assert.False(t, Aligned(a, Empty("d")))
	assert.False(t, Aligned())
}

func TestCountValid(t *testing.T) {
	s := New("x", []time.Time{day(0), day(1), day(2)}, []float64{1, math.NaN(), 3})
	assert.Equal(t, 2, s.CountValid())
}
