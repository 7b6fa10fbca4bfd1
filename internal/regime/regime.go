// Package regime classifies the current market-liquidity regime from a
// set of indicator series. Classification is point-in-time: one call,
// one verdict, no transition memory.
package regime

import "fmt"

// Regime is one of the four liquidity regimes.
type Regime int

const (
	Expansion Regime = iota
	LateCycle
	Contraction
	Stress
)

var regimeNames = [...]string{"Expansion", "Late-cycle", "Contraction", "Stress"}

// All lists the regimes in canonical order, which is also the tie-break
// order when scores are equal.
var All = []Regime{Expansion, LateCycle, Contraction, Stress}

func (r Regime) String() string {
	if r < Expansion || r > Stress {
		return fmt.Sprintf("Regime(%d)", int(r))
	}
	return regimeNames[r]
}

// Scores holds the 0..100 score per regime.
type Scores map[Regime]float64

// Metrics are the scalar inputs extracted from the indicator series.
// NaN marks a metric that could not be computed.
type Metrics struct {
	CreditGrowth3M float64
	SpreadZScore   float64
	VIXPercentile  float64
	Equity1MChange float64
	ValEarningsGap float64
}

// Result is the outcome of one classification.
type Result struct {
	Primary      Regime
	Scores       Scores
	Metrics      Metrics
	Confidence   float64
	Explanations []string
	Warning      string
}
