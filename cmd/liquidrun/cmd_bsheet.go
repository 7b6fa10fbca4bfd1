package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/macrowatch/liquidrun/internal/bsheet"
	"github.com/macrowatch/liquidrun/internal/indicator"
	"github.com/macrowatch/liquidrun/internal/series"
)

var bsheetCmd = &cobra.Command{
	Use:   "bsheet",
	Short: "Fed balance-sheet diagnostics and identity check",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := parseAsOf()
		if err != nil {
			return err
		}
		ind, err := loadIndicators(cmd.Context())
		if err != nil {
			return err
		}
		ind = ind.AsOf(asOf)

		stop := appMetrics.StepTimer("bsheet")
		snap := buildSnapshot(ind)
		stop()
		if !math.IsNaN(snap.IdentityResidual) {
			appMetrics.SetIdentityImbalance(math.Abs(snap.IdentityResidual))
		}

		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(snap.jsonSafe())
		}
		printSnapshot(snap)
		return nil
	},
}

// snapshot is the latest value of every balance-sheet diagnostic.
type snapshot struct {
	QTPace            float64 `json:"qt_pace_pct"`
	ReserveRegime     string  `json:"reserve_regime"`
	EffectiveReserves float64 `json:"effective_reserves_bn"`
	MoneyMarketRegime string  `json:"money_market_regime"`
	MoneyMarketScore  float64 `json:"money_market_score"`
	LendingRegime     string  `json:"lending_regime"`
	LendingScore      float64 `json:"lending_score"`
	TGARegime         string  `json:"tga_regime"`
	TGADragScore      float64 `json:"tga_drag_score"`
	DemandRegime      string  `json:"reserve_demand_regime"`
	DemandScore       float64 `json:"reserve_demand_score"`
	Crisis            bool    `json:"crisis_indicator"`
	IdentityResidual  float64 `json:"identity_residual_bn"`
	IdentityBalanced  bool    `json:"identity_balanced"`
	BalancedShare     float64 `json:"identity_balanced_share"`
}

// jsonSafe replaces NaN with null, which encoding/json cannot emit.
func (s snapshot) jsonSafe() map[string]any {
	out := map[string]any{
		"reserve_regime":        s.ReserveRegime,
		"money_market_regime":   s.MoneyMarketRegime,
		"lending_regime":        s.LendingRegime,
		"tga_regime":            s.TGARegime,
		"reserve_demand_regime": s.DemandRegime,
		"crisis_indicator":      s.Crisis,
		"identity_balanced":     s.IdentityBalanced,
	}
	floats := map[string]float64{
		"qt_pace_pct":             s.QTPace,
		"effective_reserves_bn":   s.EffectiveReserves,
		"money_market_score":      s.MoneyMarketScore,
		"lending_score":           s.LendingScore,
		"tga_drag_score":          s.TGADragScore,
		"reserve_demand_score":    s.DemandScore,
		"identity_residual_bn":    s.IdentityResidual,
		"identity_balanced_share": s.BalancedShare,
	}
	for k, v := range floats {
		if math.IsNaN(v) {
			out[k] = nil
		} else {
			out[k] = v
		}
	}
	return out
}

func buildSnapshot(ind indicator.Set) snapshot {
	cfg := appConfig.BalanceSheet
	p1m := appConfig.Data.EquityPeriods1M

	get := func(role string) series.Series {
		if s, ok := ind[role]; ok {
			return s
		}
		return series.Series{}
	}
	reserves := get(indicator.RoleReserves)
	rrp := get(indicator.RoleRRP)
	tga := get(indicator.RoleTGA)
	soma := get(indicator.RoleSOMA)
	lending := get(indicator.RoleFedLending)
	assets := get(indicator.RoleFedAssets)

	snap := snapshot{
		QTPace:           math.NaN(),
		IdentityResidual: math.NaN(),
		BalancedShare:    math.NaN(),
	}

	snap.QTPace = bsheet.QTPace(assets, p1m).LastValue()

	if rr := bsheet.ClassifyReserveRegime(reserves, rrp, cfg); len(rr.Labels) > 0 {
		snap.ReserveRegime = rr.Labels[len(rr.Labels)-1]
		snap.EffectiveReserves = rr.Effective.LastValue()
	}
	if mm := bsheet.MoneyMarketStress(rrp, p1m); len(mm.Regime) > 0 {
		snap.MoneyMarketRegime = mm.Regime[len(mm.Regime)-1]
		snap.MoneyMarketScore = mm.Score.LastValue()
	}
	if fl := bsheet.FedLendingStress(lending, appConfig.Data.VIXPeriodsPerYear); len(fl.Regime) > 0 {
		snap.LendingRegime = fl.Regime[len(fl.Regime)-1]
		snap.LendingScore = fl.Score.LastValue()
	}
	if td := bsheet.TGAReserveDrag(tga, reserves); len(td.Regime) > 0 {
		snap.TGARegime = td.Regime[len(td.Regime)-1]
		snap.TGADragScore = td.Score.LastValue()
	}
	if rd := bsheet.ReserveDemandProxy(rrp, reserves); len(rd.Regime) > 0 {
		snap.DemandRegime = rd.Regime[len(rd.Regime)-1]
		snap.DemandScore = rd.Score.LastValue()
		snap.Crisis = rd.Crisis[len(rd.Crisis)-1]
	}
	if id := bsheet.VerifyIdentity(reserves, soma, lending, rrp, tga, cfg.IdentityTolerance); len(id.Balanced) > 0 {
		snap.IdentityResidual = id.Residual.LastValue()
		snap.IdentityBalanced = id.Balanced[len(id.Balanced)-1]
		snap.BalancedShare = id.BalancedShare()
	}
	return snap
}

func printSnapshot(s snapshot) {
	fmt.Println("Fed Balance Sheet Diagnostics")
	fmt.Println("-----------------------------")
	fmt.Printf("QT pace (1M):        %+.2f%%\n", s.QTPace)
	fmt.Printf("Reserve regime:      %s (effective %.0fB)\n", s.ReserveRegime, s.EffectiveReserves)
	fmt.Printf("Money market:        %s (score %.0f)\n", s.MoneyMarketRegime, s.MoneyMarketScore)
	fmt.Printf("Fed lending:         %s (score %.0f)\n", s.LendingRegime, s.LendingScore)
	fmt.Printf("TGA drag:            %s (score %.0f)\n", s.TGARegime, s.TGADragScore)
	fmt.Printf("Reserve demand:      %s (score %.0f)\n", s.DemandRegime, s.DemandScore)
	if s.Crisis {
		fmt.Println("Crisis indicator:    ON (RRP holds the majority of overnight liquidity)")
	}
	fmt.Printf("Identity residual:   %+.1fB (balanced: %v, %.0f%% of periods in tolerance)\n",
		s.IdentityResidual, s.IdentityBalanced, s.BalancedShare*100)
}
