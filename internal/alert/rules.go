package alert

import (
	"fmt"
	"math"
	"strings"

	"github.com/macrowatch/liquidrun/internal/indicator"
	"github.com/macrowatch/liquidrun/internal/transform"
)

// Minimum observation counts per rule input.
const (
	minBeliefPoints = 252
	minCreditPoints = 26
	minSpreadPoints = 156
	minVIXPoints    = 756
	minEquityPoints = 21
)

// checkBeliefOverheating fires when valuation re-rating runs ahead of
// earnings revisions: the 1-month change in the valuation z-score minus
// the same change in the earnings z-score.
func (e *Engine) checkBeliefOverheating(ind indicator.Set) *Alert {
	val, okV := ind.Resolve(indicator.RoleValuation)
	earn, okE := ind.Resolve(indicator.RoleEarnings)
	if !okV || !okE || val.Len() < minBeliefPoints || earn.Len() < minBeliefPoints {
		return nil
	}

	p1m := e.data.EquityPeriods1M
	ppy := e.data.VIXPeriodsPerYear
	gap := transform.ZScoreChange(val, 3, p1m, ppy).LastValue() -
		transform.ZScoreChange(earn, 3, p1m, ppy).LastValue()
	if math.IsNaN(gap) {
		return nil
	}

	var level Level
	switch {
	case gap >= e.cfg.BeliefGapRed:
		level = Red
	case gap >= e.cfg.BeliefGapYellow:
		level = Yellow
	default:
		return nil
	}

	return &Alert{
		Rule:  RuleBeliefOverheating,
		Level: level,
		Title: "Belief overheating",
		WhatChanged: fmt.Sprintf(
			"Valuation re-rating is outpacing earnings revisions: 1-month z-score gap %.2f", gap),
		VulnerabilityPath: "Multiple compression once earnings fail to validate the re-rating",
		Checks:            [2]string{"Forward EPS revision trend", "Analyst consensus changes"},
	}
}

// checkCollateralStress fires when at least two of the three market
// gauges (volatility percentile, spread percentile, equity drawdown)
// cross their thresholds at once.
func (e *Engine) checkCollateralStress(ind indicator.Set) *Alert {
	vix, okVIX := ind.Resolve(indicator.RoleVIX)
	spread, okSpread := ind.Resolve(indicator.RoleSpread)
	equity, okEquity := ind.Resolve(indicator.RoleEquity)
	if !okVIX || !okSpread || !okEquity {
		return nil
	}

	vixPct, spreadPct, equity1M := math.NaN(), math.NaN(), math.NaN()
	if vix.Len() > minVIXPoints {
		vixPct = transform.Percentile(vix, 3, e.data.VIXPeriodsPerYear, 0).LastValue()
	}
	if spread.Len() > minSpreadPoints {
		spreadPct = transform.Percentile(spread, 3, e.data.SpreadPeriodsPerYear, 0).LastValue()
	}
	if equity.Len() > minEquityPoints {
		equity1M = transform.OneMonthChange(equity, e.data.EquityPeriods1M).LastValue()
	}
	// The rule needs all three gauges; it stays silent rather than
	// judging stress from a partial picture.
	if math.IsNaN(vixPct) || math.IsNaN(spreadPct) || math.IsNaN(equity1M) {
		return nil
	}

	var red, yellow int
	var crossed []string
	count := func(v, yellowTh, redTh float64, above bool, label string) {
		beyond := func(th float64) bool {
			if above {
				return v >= th
			}
			return v <= th
		}
		switch {
		case beyond(redTh):
			red++
			crossed = append(crossed, fmt.Sprintf("%s %.1f", label, v))
		case beyond(yellowTh):
			yellow++
			crossed = append(crossed, fmt.Sprintf("%s %.1f", label, v))
		}
	}
	count(vixPct, e.cfg.VIXPercentileYellow, e.cfg.VIXPercentileRed, true, "volatility percentile")
	count(spreadPct, e.cfg.SpreadPercentileYellow, e.cfg.SpreadPercentileRed, true, "spread percentile")
	count(equity1M, e.cfg.EquityDrawdownYellow, e.cfg.EquityDrawdownRed, false, "equity 1M change")

	var level Level
	switch {
	case red >= 2:
		level = Red
	case red+yellow >= 2:
		level = Yellow
	default:
		return nil
	}

	return &Alert{
		Rule:  RuleCollateralStress,
		Level: level,
		Title: "Collateral stress",
		WhatChanged: fmt.Sprintf("Simultaneous threshold crossings: %s",
			strings.Join(crossed, ", ")),
		VulnerabilityPath: "Margin calls forcing deleveraging across levered holders",
		Checks:            [2]string{"Leveraged ETF flows", "High-yield issuance freeze"},
	}
}

// checkCreditContraction fires when annualized 3-month credit growth
// turns negative, escalating to Red when spreads are widening at the
// same time.
func (e *Engine) checkCreditContraction(ind indicator.Set) *Alert {
	credit, ok := ind.Resolve(indicator.RoleCreditGrowth)
	if !ok || credit.Len() < minCreditPoints {
		return nil
	}

	growth := transform.ThreeMonthAnnualized(credit, e.data.CreditLag3M).LastValue()
	if math.IsNaN(growth) {
		return nil
	}

	widening := false
	if spread, ok := ind.Resolve(indicator.RoleSpread); ok && spread.Len() > 4 {
		values := spread.Values()
		chg := values[len(values)-1] - values[len(values)-5]
		widening = !math.IsNaN(chg) && chg > 0
	}

	var level Level
	var what string
	switch {
	case growth < e.cfg.Credit3MThreshold && widening:
		level = Red
		what = fmt.Sprintf("Credit contracting at %.1f%% annualized while spreads widen", growth)
	case growth < e.cfg.Credit3MThreshold:
		level = Yellow
		what = fmt.Sprintf("Credit contracting at %.1f%% annualized", growth)
	case growth < e.cfg.CreditDeceleration:
		level = Yellow
		what = fmt.Sprintf("Credit growth decelerating sharply to %.1f%% annualized", growth)
	default:
		return nil
	}

	return &Alert{
		Rule:              RuleCreditContraction,
		Level:             level,
		Title:             "Balance-sheet contraction",
		WhatChanged:       what,
		VulnerabilityPath: "Credit rollover risk as bank balance sheets shrink",
		Checks:            [2]string{"M2 growth", "Fed balance sheet change"},
	}
}
