package regime

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macrowatch/liquidrun/internal/config"
	"github.com/macrowatch/liquidrun/internal/indicator"
	"github.com/macrowatch/liquidrun/internal/series"
)

var testEnd = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

func newTestClassifier() *Classifier {
	cfg := config.Default()
	return New(cfg.Regime, cfg.Data, zerolog.Nop())
}

// gen builds a series of n points ending at testEnd with the given
// spacing, values produced by f(i) for i in [0, n).
func gen(name string, n int, step time.Duration, f func(i int) float64) series.Series {
	times := make([]time.Time, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = testEnd.Add(-time.Duration(n-1-i) * step)
		values[i] = f(i)
	}
	return series.New(name, times, values)
}

const week = 7 * 24 * time.Hour
const day = 24 * time.Hour

func contractingCredit() series.Series {
	return gen(indicator.RoleCreditGrowth, 120, week, func(i int) float64 {
		return 100 * math.Pow(0.997, float64(i))
	})
}

func expandingCredit() series.Series {
	return gen(indicator.RoleCreditGrowth, 120, week, func(i int) float64 {
		return 100 * math.Pow(1.003, float64(i))
	})
}

func wideSpread() series.Series {
	return gen(indicator.RoleSpread, 200, week, func(i int) float64 {
		if i == 199 {
			return 5.0
		}
		return 3.0 + 0.2*math.Sin(float64(i))
	})
}

func tightSpread() series.Series {
	return gen(indicator.RoleSpread, 200, week, func(i int) float64 {
		if i == 199 {
			return 2.0
		}
		return 3.0 + 0.2*math.Sin(float64(i))
	})
}

func spikedVIX() series.Series {
	return gen(indicator.RoleVIX, 800, day, func(i int) float64 {
		if i == 799 {
			return 80
		}
		return 15 + 3*math.Sin(float64(i)/10)
	})
}

func calmVIX() series.Series {
	return gen(indicator.RoleVIX, 800, day, func(i int) float64 {
		if i == 799 {
			return 11
		}
		return 15 + 3*math.Sin(float64(i)/10)
	})
}

func TestStressScenario(t *testing.T) {
	c := newTestClassifier()
	ind := indicator.Set{
		indicator.RoleCreditGrowth: contractingCredit(),
		indicator.RoleSpread:       wideSpread(),
		indicator.RoleVIX:          spikedVIX(),
	}

	res := c.Classify(ind, testEnd)

	assert.Equal(t, Stress, res.Primary)
	assert.GreaterOrEqual(t, res.Scores[Stress], res.Scores[Contraction])
	assert.Greater(t, res.Scores[Contraction], res.Scores[Expansion])
	assert.Empty(t, res.Warning)
}

func TestExpansionScenario(t *testing.T) {
	c := newTestClassifier()
	ind := indicator.Set{
		indicator.RoleCreditGrowth: expandingCredit(),
		indicator.RoleSpread:       tightSpread(),
		indicator.RoleVIX:          calmVIX(),
	}

	res := c.Classify(ind, testEnd)

	assert.Equal(t, Expansion, res.Primary)
	assert.Greater(t, res.Confidence, 0.0)
}

func TestExpansionScoreMonotonicInCreditGrowth(t *testing.T) {
	c := newTestClassifier()
	growthRates := []float64{0.996, 1.0005, 1.004}

	prev := -1.0
	for _, rate := range growthRates {
		ind := indicator.Set{
			indicator.RoleCreditGrowth: gen(indicator.RoleCreditGrowth, 120, week, func(i int) float64 {
				return 100 * math.Pow(rate, float64(i))
			}),
		}
		res := c.Classify(ind, testEnd)
		assert.GreaterOrEqual(t, res.Scores[Expansion], prev,
			"expansion score must not fall as credit growth rises (rate %v)", rate)
		prev = res.Scores[Expansion]
	}
}

func TestEmptyInputsNeverError(t *testing.T) {
	c := newTestClassifier()
	res := c.Classify(indicator.Set{}, time.Time{})

	assert.Equal(t, Expansion, res.Primary, "ties break in enumeration order")
	for _, r := range All {
		assert.Equal(t, 0.0, res.Scores[r])
	}
	assert.Equal(t, 0.0, res.Confidence)
	require.Len(t, res.Explanations, 3)
	assert.Contains(t, res.Explanations[0], "unavailable")
	assert.Contains(t, res.Explanations[1], "unavailable")
	assert.Contains(t, res.Explanations[2], "over-extension",
		"the forward-looking line follows the primary regime even without data")
	assert.Contains(t, res.Warning, "limited input coverage")
}

func TestExplanationsFollowPrimaryRegime(t *testing.T) {
	c := newTestClassifier()

	stress := c.Classify(indicator.Set{
		indicator.RoleCreditGrowth: contractingCredit(),
		indicator.RoleSpread:       wideSpread(),
		indicator.RoleVIX:          spikedVIX(),
	}, testEnd)
	require.Equal(t, Stress, stress.Primary)
	require.Len(t, stress.Explanations, 3)
	assert.Contains(t, stress.Explanations[0], "Credit growth is running",
		"credit line stays neutral unless the primary is Expansion or Contraction")
	assert.Contains(t, stress.Explanations[1], "collateral stress")
	assert.Contains(t, stress.Explanations[2], "deleveraging")

	expansion := c.Classify(indicator.Set{
		indicator.RoleCreditGrowth: expandingCredit(),
		indicator.RoleSpread:       tightSpread(),
		indicator.RoleVIX:          calmVIX(),
	}, testEnd)
	require.Equal(t, Expansion, expansion.Primary)
	require.Len(t, expansion.Explanations, 3)
	assert.Contains(t, expansion.Explanations[0], "balance sheets keep expanding")
	assert.Contains(t, expansion.Explanations[1], "risk-friendly")
	assert.Contains(t, expansion.Explanations[2], "over-extension")
}

func TestValuationGapComputesOnWeeklyData(t *testing.T) {
	c := newTestClassifier()
	ind := indicator.Set{
		// Five years of weekly points with the valuation re-rating hard
		// over the final months while earnings grind along their trend.
		indicator.RoleValuation: gen(indicator.RoleValuation, 261, week, func(i int) float64 {
			v := 100 + 0.01*float64(i)
			if i >= 241 {
				v += 1.5 * float64(i-240)
			}
			return v
		}),
		indicator.RoleEarnings: gen(indicator.RoleEarnings, 261, week, func(i int) float64 {
			return 50 + 0.01*float64(i)
		}),
	}

	res := c.Classify(ind, testEnd)

	require.False(t, math.IsNaN(res.Metrics.ValEarningsGap),
		"five years of weekly data is enough for the 3-year valuation z-score")
	assert.Greater(t, res.Metrics.ValEarningsGap, 0.5)
	assert.Greater(t, res.Scores[LateCycle], 0.0)
	assert.Equal(t, LateCycle, res.Primary)
	assert.Contains(t, res.Explanations[2], "belief-overheating")
}

func TestStaleWarningCoversNonCoreSeries(t *testing.T) {
	c := newTestClassifier()

	n := 30
	times := make([]time.Time, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = testEnd.Add(-10*day - time.Duration(n-1-i)*day)
		values[i] = 100
	}

	ind := indicator.Set{
		indicator.RoleCreditGrowth: expandingCredit(),
		indicator.RoleSpread:       tightSpread(),
		indicator.RoleVIX:          calmVIX(),
		indicator.RoleEquity:       series.New(indicator.RoleEquity, times, values),
	}

	res := c.Classify(ind, testEnd)
	assert.Contains(t, res.Warning, "stale series")
	assert.Contains(t, res.Warning, indicator.RoleEquity)
}

func TestBankCreditFallback(t *testing.T) {
	c := newTestClassifier()

	direct := c.Classify(indicator.Set{indicator.RoleCreditGrowth: expandingCredit()}, testEnd)

	fb := expandingCredit()
	fb.Name = indicator.RoleBankCredit
	viaFallback := c.Classify(indicator.Set{indicator.RoleBankCredit: fb}, testEnd)

	assert.InDelta(t, direct.Metrics.CreditGrowth3M, viaFallback.Metrics.CreditGrowth3M, 1e-9)
	assert.Equal(t, direct.Scores, viaFallback.Scores)
}

func TestShortSeriesContributeNothing(t *testing.T) {
	c := newTestClassifier()
	ind := indicator.Set{
		indicator.RoleCreditGrowth: gen(indicator.RoleCreditGrowth, 20, week, func(i int) float64 {
			return 100 + float64(i)
		}),
	}

	res := c.Classify(ind, testEnd)
	assert.True(t, math.IsNaN(res.Metrics.CreditGrowth3M), "20 points is below the credit minimum")
}

func TestStaleSeriesWarning(t *testing.T) {
	c := newTestClassifier()
	ind := indicator.Set{
		indicator.RoleCreditGrowth: expandingCredit(),
		indicator.RoleSpread:       tightSpread(),
		indicator.RoleVIX:          calmVIX(),
	}

	res := c.Classify(ind, testEnd.Add(10*day))
	assert.Contains(t, res.Warning, "stale series")
}

func TestScoresStayInRange(t *testing.T) {
	c := newTestClassifier()
	ind := indicator.Set{
		indicator.RoleCreditGrowth: contractingCredit(),
		indicator.RoleSpread:       wideSpread(),
		indicator.RoleVIX:          spikedVIX(),
	}

	res := c.Classify(ind, testEnd)
	for _, r := range All {
		assert.GreaterOrEqual(t, res.Scores[r], 0.0)
		assert.LessOrEqual(t, res.Scores[r], 100.0)
	}
}

func TestFormatReport(t *testing.T) {
	c := newTestClassifier()
	res := c.Classify(indicator.Set{indicator.RoleCreditGrowth: expandingCredit()}, testEnd)

	out := FormatReport(res)
	assert.Contains(t, out, "Liquidity Regime:")
	assert.Contains(t, out, "Expansion")
	assert.Contains(t, out, "Stress")
}
