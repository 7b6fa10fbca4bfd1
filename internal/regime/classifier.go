package regime

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/macrowatch/liquidrun/internal/config"
	"github.com/macrowatch/liquidrun/internal/indicator"
	"github.com/macrowatch/liquidrun/internal/series"
	"github.com/macrowatch/liquidrun/internal/transform"
)

// Minimum observation counts before a metric is trusted.
const (
	minCreditPoints = 63
	minSpreadPoints = 156
	minVIXPoints    = 756
	minEquityPoints = 21
)

// coreRoles are the series counted toward input coverage in the data
// quality warning.
var coreRoles = []string{
	indicator.RoleCreditGrowth,
	indicator.RoleBankCredit,
	indicator.RoleSpread,
	indicator.RoleHYSpread,
	indicator.RoleVIX,
}

// Classifier scores the four regimes from indicator series. The zero
// value is not usable; construct with New.
type Classifier struct {
	cfg  config.RegimeConfig
	data config.DataConfig
	log  zerolog.Logger
}

// New returns a classifier with the given calibration. The logger is
// optional; pass zerolog.Nop() to keep the classifier silent.
func New(cfg config.RegimeConfig, data config.DataConfig, log zerolog.Logger) *Classifier {
	return &Classifier{cfg: cfg, data: data, log: log.With().Str("component", "regime").Logger()}
}

// Classify scores the regimes as of the given time (zero time = latest
// data). Missing or short series never produce an error; the affected
// rules simply contribute nothing.
func (c *Classifier) Classify(ind indicator.Set, asOf time.Time) Result {
	ind = ind.AsOf(asOf)
	m := c.extract(ind)

	raw := c.score(m)
	scores := c.normalize(raw)

	primary, confidence := rank(scores)
	res := Result{
		Primary:      primary,
		Scores:       scores,
		Metrics:      m,
		Confidence:   confidence,
		Explanations: c.explain(primary, m),
		Warning:      c.dataQuality(ind, asOf),
	}

	c.log.Debug().
		Str("primary", primary.String()).
		Float64("confidence", confidence).
		Float64("credit_3m", m.CreditGrowth3M).
		Float64("spread_z", m.SpreadZScore).
		Float64("vix_pctile", m.VIXPercentile).
		Float64("equity_1m", m.Equity1MChange).
		Float64("val_gap", m.ValEarningsGap).
		Msg("classified")
	return res
}

// extract derives the scalar metrics from whichever series are present
// and long enough.
func (c *Classifier) extract(ind indicator.Set) Metrics {
	m := Metrics{
		CreditGrowth3M: math.NaN(),
		SpreadZScore:   math.NaN(),
		VIXPercentile:  math.NaN(),
		Equity1MChange: math.NaN(),
		ValEarningsGap: math.NaN(),
	}

	if s, ok := ind.Resolve(indicator.RoleCreditGrowth); ok && s.Len() > minCreditPoints {
		m.CreditGrowth3M = transform.ThreeMonthAnnualized(s, c.data.CreditLag3M).LastValue()
	}
	if s, ok := ind.Resolve(indicator.RoleSpread); ok && s.Len() > minSpreadPoints {
		m.SpreadZScore = transform.ZScore(s, 3, c.data.SpreadPeriodsPerYear, 0).LastValue()
	}
	if s, ok := ind.Resolve(indicator.RoleVIX); ok && s.Len() > minVIXPoints {
		m.VIXPercentile = transform.Percentile(s, 3, c.data.VIXPeriodsPerYear, 0).LastValue()
	}
	if s, ok := ind.Resolve(indicator.RoleEquity); ok && s.Len() > minEquityPoints {
		m.Equity1MChange = transform.OneMonthChange(s, c.data.EquityPeriods1M).LastValue()
	}
	if val, ok := ind.Resolve(indicator.RoleValuation); ok {
		if earn, ok := ind.Resolve(indicator.RoleEarnings); ok {
			m.ValEarningsGap = zGap(val, earn, c.data.ValuationPeriodsPerYear)
		}
	}
	return m
}

// zGap is the 3-year z-score of valuation minus the 3-year z-score of
// earnings, a proxy for price running ahead of fundamentals.
func zGap(val, earn series.Series, periodsPerYear int) float64 {
	v := transform.ZScore(val, 3, periodsPerYear, 0).LastValue()
	e := transform.ZScore(earn, 3, periodsPerYear, 0).LastValue()
	return v - e
}

// score applies the rule table to the extracted metrics.
func (c *Classifier) score(m Metrics) Scores {
	th, w := c.cfg.Thresholds, c.cfg.Weights
	raw := Scores{Expansion: 0, LateCycle: 0, Contraction: 0, Stress: 0}

	if !math.IsNaN(m.CreditGrowth3M) {
		switch {
		case m.CreditGrowth3M > th.CreditGrowthExpansion:
			raw[Expansion] += w.CreditStrongExpansion
		case m.CreditGrowth3M < th.CreditGrowthContraction:
			raw[Contraction] += w.CreditContraction
		default:
			raw[Expansion] += w.CreditNeutralExpansion
			raw[LateCycle] += w.CreditNeutralLateCycle
		}
	}

	if !math.IsNaN(m.SpreadZScore) {
		switch {
		case m.SpreadZScore < th.SpreadZScoreTight:
			raw[Expansion] += w.SpreadTightExpansion
		case m.SpreadZScore > th.SpreadZScoreWide:
			raw[Contraction] += w.SpreadWideContraction
			raw[Stress] += w.SpreadWideStress
		default:
			raw[LateCycle] += w.SpreadNeutralLateCycle
		}
	}

	if !math.IsNaN(m.VIXPercentile) {
		switch {
		case m.VIXPercentile < th.VIXPercentileLow:
			raw[Expansion] += w.VIXLowExpansion
		case m.VIXPercentile > th.VIXPercentileStress:
			raw[Stress] += w.VIXStress
		case m.VIXPercentile > th.VIXPercentileHigh:
			raw[Contraction] += w.VIXHighContraction
			raw[Stress] += w.VIXHighStress
		default:
			raw[LateCycle] += w.VIXNeutralLateCycle
		}
	}

	if !math.IsNaN(m.Equity1MChange) && m.Equity1MChange < th.EquityDrawdown {
		raw[Stress] += w.EquityDrawdownStress
		raw[Contraction] += w.EquityDrawdownContraction
	}

	if !math.IsNaN(m.ValEarningsGap) && m.ValEarningsGap > th.ValuationEarningsGap {
		raw[LateCycle] += w.GapLateCycle
		raw[Expansion] += w.GapExpansionPenalty
	}

	return raw
}

// normalize rescales raw points so the leading regime maps to 100
// before damping, then clamps to [0, 100].
func (c *Classifier) normalize(raw Scores) Scores {
	maxRaw := 1.0
	for _, v := range raw {
		if v > maxRaw {
			maxRaw = v
		}
	}
	factor := 100 / maxRaw
	out := make(Scores, len(raw))
	for r, v := range raw {
		out[r] = clamp(v*factor*c.cfg.ScoreScale, 0, 100)
	}
	return out
}

// rank picks the primary regime (enumeration order breaks ties) and
// the confidence margin over the runner-up.
func rank(scores Scores) (Regime, float64) {
	primary := All[0]
	top, second := math.Inf(-1), math.Inf(-1)
	for _, r := range All {
		v := scores[r]
		switch {
		case v > top:
			second = top
			top, primary = v, r
		case v > second:
			second = v
		}
	}
	return primary, (top - second) / 100
}

// explain renders up to three sentences describing what drove the
// verdict: the credit channel, market pricing, and a forward-looking
// line, each phrased for the primary regime. A missing metric gets a
// neutral placeholder so the report always has the same shape.
func (c *Classifier) explain(primary Regime, m Metrics) []string {
	out := make([]string, 0, 3)

	switch {
	case math.IsNaN(m.CreditGrowth3M):
		out = append(out, "Credit growth data is unavailable, so the credit channel did not influence the verdict.")
	case primary == Expansion:
		out = append(out, fmt.Sprintf("Credit is growing at %.1f%% annualized over the last quarter, and balance sheets keep expanding.", m.CreditGrowth3M))
	case primary == Contraction:
		out = append(out, fmt.Sprintf("Credit growth of %.1f%% annualized puts balance sheets under contraction pressure.", m.CreditGrowth3M))
	default:
		out = append(out, fmt.Sprintf("Credit growth is running at %.1f%% annualized.", m.CreditGrowth3M))
	}

	switch {
	case math.IsNaN(m.VIXPercentile) || math.IsNaN(m.SpreadZScore):
		out = append(out, "Volatility and spread data are unavailable, so market pricing did not influence the verdict.")
	case primary == Stress:
		out = append(out, fmt.Sprintf("Volatility in the %.0fth percentile with spreads %.1f standard deviations from their 3-year norm signals collateral stress.", m.VIXPercentile, m.SpreadZScore))
	case primary == Expansion:
		out = append(out, fmt.Sprintf("Volatility in the bottom %.0fth percentile and contained spreads mark a risk-friendly tape.", 100-m.VIXPercentile))
	default:
		out = append(out, fmt.Sprintf("Volatility sits at the %.0fth percentile with a spread z-score of %.1f.", m.VIXPercentile, m.SpreadZScore))
	}

	switch {
	case primary == LateCycle && !math.IsNaN(m.ValEarningsGap):
		out = append(out, fmt.Sprintf("Valuations are running %.1f standard deviations ahead of earnings, a belief-overheating warning.", m.ValEarningsGap))
	case primary == Expansion:
		out = append(out, "The main vulnerability from here is credit over-extension as the expansion matures.")
	case primary == Contraction:
		out = append(out, "Watch the spread-widening path: collateral erosion can force selling.")
	case primary == Stress:
		out = append(out, "Forced deleveraging and a liquidity squeeze are the immediate risks.")
	default:
		out = append(out, "Still assessing how durable the current regime is.")
	}

	return out
}

// dataQuality flags thin input coverage and stale series.
func (c *Classifier) dataQuality(ind indicator.Set, asOf time.Time) string {
	present := 0
	for _, role := range coreRoles {
		if ind.Has(role) {
			present++
		}
	}
	var warnings []string
	if present < 3 {
		warnings = append(warnings, fmt.Sprintf("limited input coverage: %d of %d core series present", present, len(coreRoles)))
	}

	now := asOf
	if now.IsZero() {
		now = time.Now().UTC()
	}
	maxAge := time.Duration(c.data.StaleAfterDays) * 24 * time.Hour
	if stale := ind.Stale(now, maxAge); len(stale) > 0 {
		warnings = append(warnings, "stale series: "+strings.Join(stale, ", "))
	}
	return strings.Join(warnings, "; ")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
