// Package series defines the time-series value type shared by every
// analytics package. A Series is an ordered run of (timestamp, value)
// observations tagged with an indicator name. Loaders deliver series
// already sorted and deduplicated; nothing in this package re-sorts.
package series

import (
	"math"
	"time"
)

// Point is a single observation. NaN marks a missing value.
type Point struct {
	Time  time.Time
	Value float64
}

// Series is an ordered sequence of observations for one indicator.
// Timestamps are strictly increasing and unique (loader precondition).
// Gaps are tolerated; frequency is never inferred from the index.
type Series struct {
	Name   string
	Points []Point
}

// New builds a series from parallel time/value slices. The slices must
// be the same length; the shorter run is used if they are not.
func New(name string, times []time.Time, values []float64) Series {
	n := len(times)
	if len(values) < n {
		n = len(values)
	}
	pts := make([]Point, n)
	for i := 0; i < n; i++ {
		pts[i] = Point{Time: times[i], Value: values[i]}
	}
	return Series{Name: name, Points: pts}
}

// Empty returns a zero-length series carrying only the indicator name.
func Empty(name string) Series {
	return Series{Name: name}
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Points) }

// IsEmpty reports whether the series has no observations.
func (s Series) IsEmpty() bool { return len(s.Points) == 0 }

// At returns the i-th observation.
func (s Series) At(i int) Point { return s.Points[i] }

// Last returns the most recent observation, or false if the series is empty.
func (s Series) Last() (Point, bool) {
	if len(s.Points) == 0 {
		return Point{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// LastValue returns the most recent value, NaN if the series is empty.
func (s Series) LastValue() float64 {
	p, ok := s.Last()
	if !ok {
		return math.NaN()
	}
	return p.Value
}

// Values returns a copy of the value column.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Times returns a copy of the timestamp column.
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Time
	}
	return out
}

// AsOf returns a copy truncated to observations at or before t.
// A zero t returns the full series unchanged.
func (s Series) AsOf(t time.Time) Series {
	if t.IsZero() {
		return s
	}
	// Timestamps are sorted, so scan back from the end.
	cut := len(s.Points)
	for cut > 0 && s.Points[cut-1].Time.After(t) {
		cut--
	}
	pts := make([]Point, cut)
	copy(pts, s.Points[:cut])
	return Series{Name: s.Name, Points: pts}
}

// Derived returns a new series on the same timestamp index with the
// supplied values and name. Transform functions use it to preserve the
// input index. The values slice must match the series length.
func (s Series) Derived(name string, values []float64) Series {
	pts := make([]Point, len(s.Points))
	for i, p := range s.Points {
		v := math.NaN()
		if i < len(values) {
			v = values[i]
		}
		pts[i] = Point{Time: p.Time, Value: v}
	}
	return Series{Name: name, Points: pts}
}

// Aligned reports whether every series is non-empty and all share the
// same length. Multi-series diagnostics require aligned inputs and
// short-circuit to empty results when this fails.
func Aligned(all ...Series) bool {
	if len(all) == 0 {
		return false
	}
	n := all[0].Len()
	if n == 0 {
		return false
	}
	for _, s := range all[1:] {
		if s.Len() != n {
			return false
		}
	}
	return true
}

// CountValid returns the number of non-NaN values.
func (s Series) CountValid() int {
	n := 0
	for _, p := range s.Points {
		if !math.IsNaN(p.Value) {
			n++
		}
	}
	return n
}
