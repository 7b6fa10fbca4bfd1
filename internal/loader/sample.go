package loader

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/macrowatch/liquidrun/internal/indicator"
	"github.com/macrowatch/liquidrun/internal/series"
)

// Sample data dimensions: five years of weekly and business-day
// observations.
const (
	sampleWeeks = 261
	sampleDays  = 1305
)

// SampleData generates a deterministic synthetic indicator set ending
// at the given time. The shapes walk through an expansion, a
// late-cycle stretch, a credit contraction and periodic stress spikes,
// so every downstream diagnostic has something to react to. The same
// seed always produces the same set.
func SampleData(seed int64, end time.Time) indicator.Set {
	rng := rand.New(rand.NewSource(seed))
	end = end.Truncate(24 * time.Hour)

	weekly := datesBack(end, sampleWeeks, 7*24*time.Hour)
	daily := datesBack(end, sampleDays, 24*time.Hour)

	set := indicator.Set{}
	put := func(name string, times []time.Time, values []float64) {
		set[name] = series.New(name, times, values)
	}

	// Bank credit (billions): steady growth with a mid-sample wobble.
	put(indicator.RoleBankCredit, weekly, weeklyShape(rng, func(t float64) float64 {
		return 10000 + 2000*t + 500*math.Sin(4*math.Pi*t)
	}, 10))

	// High-yield spread (%): tight early, widening from t=0.4 with
	// decaying stress spikes.
	spread := weeklyShape(rng, func(t float64) float64 {
		base := 4.0 - 1.0*t + 2.0*math.Pow(math.Max(t-0.4, 0), 2)*12.5
		return base
	}, 0.2)
	addSpikes(spread, []float64{0.15, 0.5, 0.85}, 8, 2.0, 0.3)
	clip(spread, 2, 10)
	put(indicator.RoleHYSpread, weekly, spread)

	// VIX (daily): mean-reverting around 18 with stress spikes.
	vix := make([]float64, sampleDays)
	vix[0] = 18
	for i := 1; i < sampleDays; i++ {
		vix[i] = vix[i-1] + 0.1*(18-vix[i-1]) + rng.NormFloat64()*1.5
	}
	addSpikes(vix, []float64{0.15, 0.5, 0.85}, 20, 25, 0.1)
	clip(vix, 10, 80)
	put(indicator.RoleVIX, daily, vix)

	// S&P 500 (daily): drifting upward with two corrections.
	sp500 := make([]float64, sampleDays)
	level := 3000.0
	for i := 0; i < sampleDays; i++ {
		ret := 0.0003 + 0.08/float64(sampleDays) + rng.NormFloat64()*0.01
		for _, c := range []float64{0.15, 0.5} {
			start := int(c * sampleDays)
			if i >= start && i < start+40 {
				ret -= 0.008 * math.Exp(-0.05*float64(i-start))
			}
		}
		level *= 1 + ret
		sp500[i] = level
	}
	put(indicator.RoleSP500, daily, sp500)

	// Forward EPS (index points): trending up, lagging price.
	eps := weeklyShape(rng, func(t float64) float64 {
		return 180 + 30*t + 10*math.Sin(2*math.Pi*t)
	}, 1)
	put(indicator.RoleForwardEPS, weekly, eps)

	// P/E ratio: weekly price sample over EPS.
	pe := make([]float64, sampleWeeks)
	for i := range pe {
		di := i * 5
		if di >= sampleDays {
			di = sampleDays - 1
		}
		pe[i] = sp500[di] / eps[i]
	}
	put(indicator.RolePERatio, weekly, pe)

	// Reserve balances (billions): slow drain with seasonal swing.
	reserves := weeklyShape(rng, func(t float64) float64 {
		return 3500 - 300*t + 50*math.Sin(2*math.Pi*t)
	}, 5)
	clip(reserves, 3000, 3800)
	put(indicator.RoleReserves, weekly, reserves)

	// Overnight RRP (billions): logistic rise to ~2300 then unwind.
	rrp := weeklyShape(rng, func(t float64) float64 {
		risen := 2300 / (1 + math.Exp(-10*(t-0.4)))
		return risen - 1800*math.Max(t-0.6, 0)
	}, 20)
	clip(rrp, 0, 2500)
	put(indicator.RoleRRP, weekly, rrp)

	// TGA (billions): government spending cycles between 200 and 800.
	tga := weeklyShape(rng, func(t float64) float64 {
		return 500 + 150*math.Sin(8*math.Pi*t) + 100*math.Sin(12*math.Pi*t)
	}, 15)
	clip(tga, 200, 800)
	put(indicator.RoleTGA, weekly, tga)

	// Fed lending facilities (billions): quiet baseline with one
	// banking-crisis spike around t=0.35.
	lending := weeklyShape(rng, func(t float64) float64 {
		d := (t - 0.35) / 0.046
		return 5 + 150*math.Exp(-2*d*d)
	}, 2)
	clip(lending, 0, 160)
	put(indicator.RoleFedLending, weekly, lending)

	// Fed total assets (billions): QE ramp then plateau; SOMA holds
	// most of it.
	assets := weeklyShape(rng, func(t float64) float64 {
		return 4000 + 4000*(1-math.Exp(-3*t))
	}, 10)
	clip(assets, 4000, 9000)
	put(indicator.RoleFedAssets, weekly, assets)

	soma := make([]float64, sampleWeeks)
	for i, v := range assets {
		soma[i] = v * 0.95
	}
	put(indicator.RoleSOMA, weekly, soma)

	return set
}

// SampleLoader serves series from a generated sample set.
type SampleLoader struct {
	set indicator.Set
}

// NewSampleLoader generates the sample set once, up front.
func NewSampleLoader(seed int64, end time.Time) *SampleLoader {
	return &SampleLoader{set: SampleData(seed, end)}
}

// Load returns the named sample series, or a NotFoundError.
func (l *SampleLoader) Load(_ context.Context, name string) (series.Series, error) {
	if s, ok := l.set[name]; ok {
		return s, nil
	}
	return series.Series{}, &NotFoundError{Name: name}
}

// Set returns the full sample set.
func (l *SampleLoader) Set() indicator.Set { return l.set }

func datesBack(end time.Time, n int, step time.Duration) []time.Time {
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = end.Add(-time.Duration(n-1-i) * step)
	}
	return out
}

// weeklyShape evaluates f over t in [0, 1] and layers Gaussian noise.
func weeklyShape(rng *rand.Rand, f func(t float64) float64, noise float64) []float64 {
	out := make([]float64, sampleWeeks)
	for i := range out {
		t := float64(i) / float64(sampleWeeks-1)
		out[i] = f(t) + rng.NormFloat64()*noise
	}
	return out
}

// addSpikes adds exponentially decaying spikes starting at the given
// fractional positions.
func addSpikes(values []float64, positions []float64, length int, height, decay float64) {
	n := len(values)
	for _, p := range positions {
		start := int(p * float64(n))
		for j := 0; j < length && start+j < n; j++ {
			values[start+j] += height * math.Exp(-decay*float64(j))
		}
	}
}

func clip(values []float64, lo, hi float64) {
	for i, v := range values {
		if v < lo {
			values[i] = lo
		}
		if v > hi {
			values[i] = hi
		}
	}
}
