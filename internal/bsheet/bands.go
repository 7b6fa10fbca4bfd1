// Package bsheet derives Fed balance-sheet diagnostics: QT pace,
// reserve-regime classification, money-market and lending stress,
// TGA drag, reserve-demand proxy and the balance-sheet identity check.
//
// Inputs are level series in billions of dollars. Missing or
// mismatched inputs return empty bundles, never errors.
package bsheet

import "math"

// Band is one segment of a piecewise scorer: values in [Lo, Hi) carry
// the label and map linearly onto [ScoreLo, ScoreHi], clamped.
type Band struct {
	Lo      float64
	Hi      float64
	Label   string
	ScoreLo float64
	ScoreHi float64
}

// BandScorer classifies and scores a value against ordered bands.
// Bands are applied by inclusive lower bound, later bands winning, so
// values above the last band's Hi still take the last band (clamped)
// and values below the first band's Lo fall into the first band.
type BandScorer struct {
	Bands []Band

	// Default is the label for NaN values. Empty means the first
	// band's label.
	Default string
}

func (bs BandScorer) pick(v float64) Band {
	chosen := bs.Bands[0]
	for _, b := range bs.Bands {
		if v >= b.Lo {
			chosen = b
		}
	}
	return chosen
}

// Classify returns the band label for v. NaN takes the default label;
// the score column carries NaN there.
func (bs BandScorer) Classify(v float64) string {
	if math.IsNaN(v) {
		if bs.Default != "" {
			return bs.Default
		}
		return bs.Bands[0].Label
	}
	return bs.pick(v).Label
}

// Score maps v into its band's score sub-range, clamped to it.
func (bs BandScorer) Score(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	b := bs.pick(v)
	scaled := b.ScoreLo + (v-b.Lo)/(b.Hi-b.Lo)*(b.ScoreHi-b.ScoreLo)
	lo, hi := b.ScoreLo, b.ScoreHi
	if lo > hi {
		lo, hi = hi, lo
	}
	if scaled < lo {
		return lo
	}
	if scaled > hi {
		return hi
	}
	return scaled
}

// Default band tables, in billions of dollars (levels) or ratios.
var (
	// MoneyMarketBands grade overnight RRP usage. Each band rescales
	// its own range to the full 0..100.
	MoneyMarketBands = BandScorer{Bands: []Band{
		{Lo: 0, Hi: 500, Label: "Normal", ScoreLo: 0, ScoreHi: 100},
		{Lo: 500, Hi: 1500, Label: "Elevated", ScoreLo: 0, ScoreHi: 100},
		{Lo: 1500, Hi: 2200, Label: "Stress", ScoreLo: 0, ScoreHi: 100},
	}}

	// FedLendingBands grade lending-facility usage the same way.
	FedLendingBands = BandScorer{Bands: []Band{
		{Lo: 0, Hi: 100, Label: "Normal", ScoreLo: 0, ScoreHi: 100},
		{Lo: 100, Hi: 300, Label: "Elevated", ScoreLo: 0, ScoreHi: 100},
		{Lo: 300, Hi: 1000, Label: "Stress", ScoreLo: 0, ScoreHi: 100},
	}}

	// TGADragBands grade the TGA share of liquid assets onto one
	// continuous 0..100 scale.
	TGADragBands = BandScorer{Default: "Normal", Bands: []Band{
		{Lo: 0, Hi: 0.05, Label: "Minimal", ScoreLo: 0, ScoreHi: 50},
		{Lo: 0.05, Hi: 0.15, Label: "Normal", ScoreLo: 50, ScoreHi: 75},
		{Lo: 0.15, Hi: 0.25, Label: "Elevated", ScoreLo: 75, ScoreHi: 90},
		{Lo: 0.25, Hi: 1.0, Label: "Stress", ScoreLo: 90, ScoreHi: 100},
	}}

	// ReserveDemandBands grade the RRP share of overnight liquidity.
	ReserveDemandBands = BandScorer{Bands: []Band{
		{Lo: 0, Hi: 0.3, Label: "Normal", ScoreLo: 0, ScoreHi: 50},
		{Lo: 0.3, Hi: 0.5, Label: "Elevated", ScoreLo: 50, ScoreHi: 90},
		{Lo: 0.5, Hi: 1.0, Label: "Stress", ScoreLo: 90, ScoreHi: 100},
	}}
)
