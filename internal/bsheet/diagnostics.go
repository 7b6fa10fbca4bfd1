package bsheet

import (
	"math"

	"github.com/macrowatch/liquidrun/internal/config"
	"github.com/macrowatch/liquidrun/internal/series"
	"github.com/macrowatch/liquidrun/internal/transform"
)

// QTPace returns the monthly percentage change in total Fed assets.
// Negative values mean the balance sheet is shrinking (QT), positive
// means expansion (QE). Fewer than two observations yield an empty
// series.
func QTPace(fedAssets series.Series, periods1M int) series.Series {
	if fedAssets.Len() < 2 {
		return series.Empty(fedAssets.Name + "_qt_pace")
	}
	pace := transform.OneMonthChange(fedAssets, periods1M)
	pace.Name = fedAssets.Name + "_qt_pace"
	return pace
}

// ReserveRegimes classifies every observation of effective reserves.
type ReserveRegimes struct {
	Labels    []string
	Effective series.Series
}

// ClassifyReserveRegime labels each observation Abundant, Ample, Tight
// or Scarce based on effective reserves: raw reserves less a haircut
// share of RRP when an aligned RRP series is supplied.
func ClassifyReserveRegime(reserves, rrp series.Series, cfg config.BalanceSheetConfig) ReserveRegimes {
	if reserves.IsEmpty() {
		return ReserveRegimes{}
	}

	effective := reserves.Values()
	if !rrp.IsEmpty() && rrp.Len() == reserves.Len() {
		rrpValues := rrp.Values()
		for i := range effective {
			effective[i] -= rrpValues[i] * cfg.RRPHaircut
		}
	}

	labels := make([]string, len(effective))
	for i, v := range effective {
		switch {
		case math.IsNaN(v):
			labels[i] = "Scarce"
		case v >= cfg.AbundantMin:
			labels[i] = "Abundant"
		case v >= cfg.AmpleMin:
			labels[i] = "Ample"
		case v >= cfg.TightMin:
			labels[i] = "Tight"
		default:
			labels[i] = "Scarce"
		}
	}
	return ReserveRegimes{
		Labels:    labels,
		Effective: reserves.Derived(reserves.Name+"_effective", effective),
	}
}

// MoneyMarketResult bundles the RRP stress diagnostics.
type MoneyMarketResult struct {
	Level        series.Series
	Regime       []string
	Score        series.Series
	Change1M     series.Series
	Acceleration series.Series
}

// MoneyMarketStress grades overnight reverse-repo usage. High RRP
// levels mean money-market funds prefer the Fed facility to bank
// reserves, a sign of masked funding stress.
func MoneyMarketStress(rrp series.Series, periods1M int) MoneyMarketResult {
	if rrp.IsEmpty() {
		return MoneyMarketResult{}
	}

	values := rrp.Values()
	regime := make([]string, len(values))
	score := make([]float64, len(values))
	for i, v := range values {
		regime[i] = MoneyMarketBands.Classify(v)
		score[i] = MoneyMarketBands.Score(v)
	}

	return MoneyMarketResult{
		Level:        rrp,
		Regime:       regime,
		Score:        rrp.Derived(rrp.Name+"_stress_score", score),
		Change1M:     transform.OneMonthChange(rrp, periods1M),
		Acceleration: transform.Acceleration(rrp, periods1M, periods1M),
	}
}

// FedLendingResult bundles the lending-facility stress diagnostics.
type FedLendingResult struct {
	Level        series.Series
	Regime       []string
	Score        series.Series
	YoY          series.Series
	Percentile3Y series.Series
}

// FedLendingStress grades Fed lending-facility usage. Heavy usage
// marks bank stress and credit-system dysfunction.
func FedLendingStress(lending series.Series, periodsPerYear int) FedLendingResult {
	if lending.IsEmpty() {
		return FedLendingResult{}
	}

	values := lending.Values()
	regime := make([]string, len(values))
	score := make([]float64, len(values))
	for i, v := range values {
		regime[i] = FedLendingBands.Classify(v)
		score[i] = FedLendingBands.Score(v)
	}

	return FedLendingResult{
		Level:        lending,
		Regime:       regime,
		Score:        lending.Derived(lending.Name+"_stress_score", score),
		YoY:          transform.YoY(lending, periodsPerYear),
		Percentile3Y: transform.Percentile(lending, 3, periodsPerYear, 0),
	}
}

// TGADragResult bundles the Treasury-account drag diagnostics.
type TGADragResult struct {
	Ratio             series.Series
	Regime            []string
	Score             series.Series
	Level             series.Series
	EffectiveReserves series.Series
}

// TGAReserveDrag measures how much the Treasury General Account drains
// from system liquidity. Ratio = TGA / (TGA + reserves); a zero
// denominator yields NaN. Mismatched inputs return an empty bundle.
func TGAReserveDrag(tga, reserves series.Series) TGADragResult {
	if !series.Aligned(tga, reserves) {
		return TGADragResult{}
	}

	tgaValues := tga.Values()
	resValues := reserves.Values()
	n := len(tgaValues)
	ratio := make([]float64, n)
	regime := make([]string, n)
	score := make([]float64, n)
	effective := make([]float64, n)
	for i := 0; i < n; i++ {
		total := tgaValues[i] + resValues[i]
		if total == 0 || math.IsNaN(total) {
			ratio[i] = math.NaN()
		} else {
			ratio[i] = tgaValues[i] / total
		}
		regime[i] = TGADragBands.Classify(ratio[i])
		score[i] = TGADragBands.Score(ratio[i])
		effective[i] = resValues[i] * (1 - ratio[i])
	}

	return TGADragResult{
		Ratio:             tga.Derived("tga_ratio", ratio),
		Regime:            regime,
		Score:             tga.Derived("tga_drag_score", score),
		Level:             tga,
		EffectiveReserves: tga.Derived("effective_reserves", effective),
	}
}

// ReserveDemandResult bundles the reserve-demand proxy diagnostics.
type ReserveDemandResult struct {
	Ratio          series.Series
	Regime         []string
	Score          series.Series
	TotalLiquidity series.Series
	Crisis         []bool
}

// ReserveDemandProxy measures what share of overnight liquidity is
// parked at the Fed's RRP facility rather than held as bank reserves.
// Ratios above one half flag crisis conditions.
func ReserveDemandProxy(rrp, reserves series.Series) ReserveDemandResult {
	if !series.Aligned(rrp, reserves) {
		return ReserveDemandResult{}
	}

	rrpValues := rrp.Values()
	resValues := reserves.Values()
	n := len(rrpValues)
	ratio := make([]float64, n)
	regime := make([]string, n)
	score := make([]float64, n)
	total := make([]float64, n)
	crisis := make([]bool, n)
	for i := 0; i < n; i++ {
		total[i] = rrpValues[i] + resValues[i]
		if total[i] == 0 || math.IsNaN(total[i]) {
			ratio[i] = math.NaN()
			total[i] = math.NaN()
		} else {
			ratio[i] = rrpValues[i] / total[i]
		}
		regime[i] = ReserveDemandBands.Classify(ratio[i])
		score[i] = ReserveDemandBands.Score(ratio[i])
		crisis[i] = ratio[i] > 0.5
	}

	return ReserveDemandResult{
		Ratio:          rrp.Derived("reserve_demand_ratio", ratio),
		Regime:         regime,
		Score:          rrp.Derived("reserve_demand_score", score),
		TotalLiquidity: rrp.Derived("total_overnight_liquidity", total),
		Crisis:         crisis,
	}
}
