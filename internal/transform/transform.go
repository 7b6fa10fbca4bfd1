// Package transform provides the pure rolling transforms every other
// analytics package is built from: percentage changes, rolling z-scores,
// acceleration, inflection detection, percentile ranks and rolling
// summary statistics.
//
// All functions are deterministic, non-mutating and index-preserving:
// the output series shares the input's timestamp index and carries NaN
// wherever history is insufficient. Division by zero (flat rolling
// window, zero base value) yields NaN, never a panic or an error.
package transform

import (
	"math"
	"sort"

	"github.com/macrowatch/liquidrun/internal/series"
)

// pctChange computes the percentage change over lag periods, scaled to
// percent. NaN when the base observation is missing, zero or out of range.
func pctChange(values []float64, lag int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < lag {
			out[i] = math.NaN()
			continue
		}
		base := values[i-lag]
		if math.IsNaN(base) || base == 0 || math.IsNaN(values[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = (values[i] - base) / base * 100
	}
	return out
}

// diff computes the arithmetic difference over lag periods.
func diff(values []float64, lag int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < lag || math.IsNaN(values[i]) || math.IsNaN(values[i-lag]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i] - values[i-lag]
	}
	return out
}

// YoY returns the year-over-year percentage change. periodsPerYear is
// 252 for daily, 52 for weekly, 12 for monthly data.
func YoY(s series.Series, periodsPerYear int) series.Series {
	return s.Derived(s.Name+"_yoy", pctChange(s.Values(), periodsPerYear))
}

// OneMonthChange returns the percentage change over one month of
// observations (21 for daily data, 4 for weekly).
func OneMonthChange(s series.Series, periods1M int) series.Series {
	return s.Derived(s.Name+"_1m", pctChange(s.Values(), periods1M))
}

// ThreeMonthAnnualized returns the 3-month percentage change compounded
// to an annual rate: ((1+r)^4 - 1) * 100.
func ThreeMonthAnnualized(s series.Series, periods3M int) series.Series {
	values := s.Values()
	out := make([]float64, len(values))
	for i := range values {
		if i < periods3M {
			out[i] = math.NaN()
			continue
		}
		base := values[i-periods3M]
		if math.IsNaN(base) || base == 0 || math.IsNaN(values[i]) {
			out[i] = math.NaN()
			continue
		}
		r := (values[i] - base) / base
		out[i] = (math.Pow(1+r, 4) - 1) * 100
	}
	return s.Derived(s.Name+"_3m_ann", out)
}

// windowBounds returns the trailing window [lo, i] for index i.
func windowBounds(i, window int) int {
	lo := i - window + 1
	if lo < 0 {
		lo = 0
	}
	return lo
}

// meanStd returns the mean and sample standard deviation of the non-NaN
// values in the slice, with the count of valid points. Std is NaN below
// two valid points.
func meanStd(window []float64) (mean, std float64, n int) {
	var sum float64
	for _, v := range window {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), math.NaN(), 0
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, math.NaN(), n
	}
	var ss float64
	for _, v := range window {
		if math.IsNaN(v) {
			continue
		}
		d := v - mean
		ss += d * d
	}
	std = math.Sqrt(ss / float64(n-1))
	return mean, std, n
}

// ZScore returns the rolling z-score over a windowYears*periodsPerYear
// trailing window. minPeriods <= 0 defaults to half the window. A flat
// window (zero std) yields NaN. The first full half-window of history
// is consumed before the first score: a series scored with window W has
// exactly W/2 leading NaNs.
func ZScore(s series.Series, windowYears, periodsPerYear, minPeriods int) series.Series {
	window := windowYears * periodsPerYear
	if minPeriods <= 0 {
		minPeriods = window / 2
	}
	values := s.Values()
	out := make([]float64, len(values))
	for i := range values {
		out[i] = math.NaN()
		if math.IsNaN(values[i]) {
			continue
		}
		lo := windowBounds(i, window)
		mean, std, n := meanStd(values[lo : i+1])
		if n <= minPeriods || math.IsNaN(std) || std == 0 {
			continue
		}
		out[i] = (values[i] - mean) / std
	}
	return s.Derived(s.Name+"_zscore", out)
}

// ZScoreChange returns the change in the rolling z-score over
// changePeriods observations.
func ZScoreChange(s series.Series, windowYears, changePeriods, periodsPerYear int) series.Series {
	z := ZScore(s, windowYears, periodsPerYear, 0)
	return s.Derived(s.Name+"_zscore_chg", diff(z.Values(), changePeriods))
}

// Acceleration returns the second difference: the change over secondLag
// of the change over firstLag. Positive values mean the rate of change
// is itself rising.
func Acceleration(s series.Series, firstLag, secondLag int) series.Series {
	velocity := diff(s.Values(), firstLag)
	return s.Derived(s.Name+"_accel", diff(velocity, secondLag))
}

// DetectInflection marks local peaks (+1) and troughs (-1) using a
// centered rolling window of length lookback. A point is a peak when it
// equals the centered rolling max and sits strictly above both
// neighbors; troughs are symmetric. sensitivity > 0 additionally
// requires the absolute percent move over lookback periods to reach the
// threshold. Everything else, including the window edges, is 0.
func DetectInflection(s series.Series, lookback int, sensitivity float64) series.Series {
	values := s.Values()
	out := make([]float64, len(values))
	if lookback < 1 {
		return s.Derived(s.Name+"_inflection", out)
	}
	pct := pctChange(values, lookback)

	left := (lookback - 1) / 2
	right := lookback / 2
	for i := range values {
		lo, hi := i-left, i+right
		if lo < 0 || hi >= len(values) || i == 0 || i == len(values)-1 {
			continue
		}
		v := values[i]
		if math.IsNaN(v) || math.IsNaN(values[i-1]) || math.IsNaN(values[i+1]) {
			continue
		}
		wmax, wmin := math.Inf(-1), math.Inf(1)
		full := true
		for j := lo; j <= hi; j++ {
			if math.IsNaN(values[j]) {
				full = false
				break
			}
			wmax = math.Max(wmax, values[j])
			wmin = math.Min(wmin, values[j])
		}
		if !full {
			continue
		}
		if sensitivity > 0 && (math.IsNaN(pct[i]) || math.Abs(pct[i]) < sensitivity) {
			continue
		}
		switch {
		case v == wmax && values[i-1] < v && values[i+1] < v:
			out[i] = 1
		case v == wmin && values[i-1] > v && values[i+1] > v:
			out[i] = -1
		}
	}
	return s.Derived(s.Name+"_inflection", out)
}

// Percentile returns the rolling percentile rank of the latest value
// against all non-NaN values inside the trailing window, scaled to
// [0, 100]. Ties contribute half a rank and the latest value counts
// its own membership, so the window maximum ranks exactly 100.
// NaN below minPeriods valid points (default: half the window).
func Percentile(s series.Series, windowYears, periodsPerYear, minPeriods int) series.Series {
	window := windowYears * periodsPerYear
	if minPeriods <= 0 {
		minPeriods = window / 2
	}
	values := s.Values()
	out := make([]float64, len(values))
	for i := range values {
		out[i] = math.NaN()
		if math.IsNaN(values[i]) {
			continue
		}
		lo := windowBounds(i, window)
		var below, belowEq, n int
		for j := lo; j <= i; j++ {
			if math.IsNaN(values[j]) {
				continue
			}
			n++
			if values[j] < values[i] {
				below++
			}
			if values[j] <= values[i] {
				belowEq++
			}
		}
		if n < minPeriods {
			continue
		}
		boost := 0
		if belowEq > below {
			boost = 1
		}
		out[i] = float64(below+belowEq+boost) * 50 / float64(n)
	}
	return s.Derived(s.Name+"_pctile", out)
}

// Stats bundles the rolling summary statistics of one series, all on
// the input's timestamp index.
type Stats struct {
	Mean   series.Series
	Std    series.Series
	Min    series.Series
	Max    series.Series
	Median series.Series
	Skew   series.Series
	Kurt   series.Series
}

// RollingStats computes mean, sample std, min, max, median, adjusted
// skewness and excess kurtosis over a fixed trailing window.
// minPeriods <= 0 defaults to half the window; each statistic further
// requires its own minimum sample (2 for std, 3 for skew, 4 for kurt).
func RollingStats(s series.Series, window, minPeriods int) Stats {
	if minPeriods <= 0 {
		minPeriods = window / 2
	}
	n := s.Len()
	mean := make([]float64, n)
	std := make([]float64, n)
	minv := make([]float64, n)
	maxv := make([]float64, n)
	median := make([]float64, n)
	skew := make([]float64, n)
	kurt := make([]float64, n)
	values := s.Values()

	for i := 0; i < n; i++ {
		mean[i], std[i], minv[i], maxv[i], median[i], skew[i], kurt[i] =
			nan7()
		lo := windowBounds(i, window)
		valid := make([]float64, 0, i-lo+1)
		for j := lo; j <= i; j++ {
			if !math.IsNaN(values[j]) {
				valid = append(valid, values[j])
			}
		}
		k := len(valid)
		if k < minPeriods || k == 0 {
			continue
		}
		m, sd, _ := meanStd(valid)
		mean[i] = m
		if k >= 2 {
			std[i] = sd
		}
		minv[i], maxv[i] = minMax(valid)
		median[i] = medianOf(valid)
		if k >= 3 && sd > 0 {
			skew[i] = sampleSkew(valid, m, sd)
		}
		if k >= 4 && sd > 0 {
			kurt[i] = sampleKurt(valid, m, sd)
		}
	}

	return Stats{
		Mean:   s.Derived(s.Name+"_mean", mean),
		Std:    s.Derived(s.Name+"_std", std),
		Min:    s.Derived(s.Name+"_min", minv),
		Max:    s.Derived(s.Name+"_max", maxv),
		Median: s.Derived(s.Name+"_median", median),
		Skew:   s.Derived(s.Name+"_skew", skew),
		Kurt:   s.Derived(s.Name+"_kurt", kurt),
	}
}

func nan7() (a, b, c, d, e, f, g float64) {
	v := math.NaN()
	return v, v, v, v, v, v, v
}

func minMax(valid []float64) (lo, hi float64) {
	lo, hi = valid[0], valid[0]
	for _, v := range valid[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func medianOf(valid []float64) float64 {
	sorted := append([]float64(nil), valid...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// sampleSkew is the adjusted Fisher-Pearson coefficient, matching the
// conventional bias-corrected sample skewness.
func sampleSkew(valid []float64, mean, std float64) float64 {
	n := float64(len(valid))
	var m3 float64
	for _, v := range valid {
		d := v - mean
		m3 += d * d * d
	}
	return n / ((n - 1) * (n - 2)) * m3 / math.Pow(std, 3)
}

// sampleKurt is the bias-corrected excess kurtosis.
func sampleKurt(valid []float64, mean, std float64) float64 {
	n := float64(len(valid))
	var m4 float64
	for _, v := range valid {
		d := v - mean
		m4 += d * d * d * d
	}
	term := n * (n + 1) / ((n - 1) * (n - 2) * (n - 3)) * m4 / math.Pow(std, 4)
	return term - 3*(n-1)*(n-1)/((n-2)*(n-3))
}
