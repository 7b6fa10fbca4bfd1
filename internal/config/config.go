// Package config carries the tunable thresholds and weights of the
// analytics engine. Defaults reproduce the published calibration;
// LoadFromFile overlays a YAML file on top of them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root of the engine configuration.
type Config struct {
	Regime       RegimeConfig       `yaml:"regime"`
	Alerts       AlertsConfig       `yaml:"alerts"`
	BalanceSheet BalanceSheetConfig `yaml:"balance_sheet"`
	Data         DataConfig         `yaml:"data"`
}

// RegimeConfig holds the classification thresholds and rule weights.
type RegimeConfig struct {
	Thresholds RegimeThresholds `yaml:"thresholds"`
	Weights    RegimeWeights    `yaml:"weights"`

	// ScoreScale damps the normalized scores so a single dominant rule
	// cannot saturate a regime at 100.
	ScoreScale float64 `yaml:"score_scale"`
}

// RegimeThresholds are the cut points of the regime rule table.
type RegimeThresholds struct {
	CreditGrowthExpansion   float64 `yaml:"credit_growth_expansion"`
	CreditGrowthContraction float64 `yaml:"credit_growth_contraction"`
	SpreadZScoreTight       float64 `yaml:"spread_zscore_tight"`
	SpreadZScoreWide        float64 `yaml:"spread_zscore_wide"`
	VIXPercentileLow        float64 `yaml:"vix_percentile_low"`
	VIXPercentileHigh       float64 `yaml:"vix_percentile_high"`
	VIXPercentileStress     float64 `yaml:"vix_percentile_stress"`
	ValuationEarningsGap    float64 `yaml:"valuation_vs_earnings_gap"`
	EquityDrawdown          float64 `yaml:"equity_drawdown"`
}

// RegimeWeights are the rule-table point contributions per branch.
type RegimeWeights struct {
	CreditStrongExpansion     float64 `yaml:"credit_strong_expansion"`
	CreditContraction         float64 `yaml:"credit_contraction"`
	CreditNeutralExpansion    float64 `yaml:"credit_neutral_expansion"`
	CreditNeutralLateCycle    float64 `yaml:"credit_neutral_late_cycle"`
	SpreadTightExpansion      float64 `yaml:"spread_tight_expansion"`
	SpreadWideContraction     float64 `yaml:"spread_wide_contraction"`
	SpreadWideStress          float64 `yaml:"spread_wide_stress"`
	SpreadNeutralLateCycle    float64 `yaml:"spread_neutral_late_cycle"`
	VIXLowExpansion           float64 `yaml:"vix_low_expansion"`
	VIXStress                 float64 `yaml:"vix_stress"`
	VIXHighContraction        float64 `yaml:"vix_high_contraction"`
	VIXHighStress             float64 `yaml:"vix_high_stress"`
	VIXNeutralLateCycle       float64 `yaml:"vix_neutral_late_cycle"`
	EquityDrawdownStress      float64 `yaml:"equity_drawdown_stress"`
	EquityDrawdownContraction float64 `yaml:"equity_drawdown_contraction"`
	GapLateCycle              float64 `yaml:"gap_late_cycle"`
	GapExpansionPenalty       float64 `yaml:"gap_expansion_penalty"`
}

// AlertsConfig holds the alert-rule thresholds.
type AlertsConfig struct {
	BeliefGapYellow        float64 `yaml:"belief_gap_yellow"`
	BeliefGapRed           float64 `yaml:"belief_gap_red"`
	VIXPercentileYellow    float64 `yaml:"vix_percentile_yellow"`
	VIXPercentileRed       float64 `yaml:"vix_percentile_red"`
	SpreadPercentileYellow float64 `yaml:"spread_percentile_yellow"`
	SpreadPercentileRed    float64 `yaml:"spread_percentile_red"`
	EquityDrawdownYellow   float64 `yaml:"equity_drawdown_yellow"`
	EquityDrawdownRed      float64 `yaml:"equity_drawdown_red"`
	Credit3MThreshold      float64 `yaml:"credit_3m_threshold"`
	CreditDeceleration     float64 `yaml:"credit_deceleration"`
}

// BalanceSheetConfig holds the reserve-regime cut points and the
// balance-sheet identity tolerance, in billions of dollars.
type BalanceSheetConfig struct {
	AbundantMin       float64 `yaml:"abundant_min"`
	AmpleMin          float64 `yaml:"ample_min"`
	TightMin          float64 `yaml:"tight_min"`
	RRPHaircut        float64 `yaml:"rrp_haircut"`
	IdentityTolerance float64 `yaml:"identity_tolerance"`
}

// DataConfig holds frequency hints used when deriving metrics from raw
// series.
type DataConfig struct {
	CreditLag3M             int `yaml:"credit_lag_3m"`
	SpreadPeriodsPerYear    int `yaml:"spread_periods_per_year"`
	VIXPeriodsPerYear       int `yaml:"vix_periods_per_year"`
	ValuationPeriodsPerYear int `yaml:"valuation_periods_per_year"`
	EquityPeriods1M         int `yaml:"equity_periods_1m"`
	StaleAfterDays          int `yaml:"stale_after_days"`
}

// Default returns the shipped calibration.
func Default() Config {
	return Config{
		Regime: RegimeConfig{
			Thresholds: RegimeThresholds{
				CreditGrowthExpansion:   3.0,
				CreditGrowthContraction: 0.0,
				SpreadZScoreTight:       -0.5,
				SpreadZScoreWide:        1.0,
				VIXPercentileLow:        30,
				VIXPercentileHigh:       70,
				VIXPercentileStress:     90,
				ValuationEarningsGap:    0.5,
				EquityDrawdown:          -5.0,
			},
			Weights: RegimeWeights{
				CreditStrongExpansion:     30,
				CreditContraction:         30,
				CreditNeutralExpansion:    15,
				CreditNeutralLateCycle:    15,
				SpreadTightExpansion:      25,
				SpreadWideContraction:     20,
				SpreadWideStress:          15,
				SpreadNeutralLateCycle:    15,
				VIXLowExpansion:           25,
				VIXStress:                 40,
				VIXHighContraction:        20,
				VIXHighStress:             10,
				VIXNeutralLateCycle:       10,
				EquityDrawdownStress:      30,
				EquityDrawdownContraction: 10,
				GapLateCycle:              30,
				GapExpansionPenalty:       -10,
			},
			ScoreScale: 0.7,
		},
		Alerts: AlertsConfig{
			BeliefGapYellow:        0.3,
			BeliefGapRed:           0.6,
			VIXPercentileYellow:    75,
			VIXPercentileRed:       90,
			SpreadPercentileYellow: 70,
			SpreadPercentileRed:    85,
			EquityDrawdownYellow:   -3.0,
			EquityDrawdownRed:      -7.0,
			Credit3MThreshold:      0.0,
			CreditDeceleration:     -2.0,
		},
		BalanceSheet: BalanceSheetConfig{
			AbundantMin:       2500,
			AmpleMin:          1500,
			TightMin:          500,
			RRPHaircut:        0.1,
			IdentityTolerance: 50,
		},
		Data: DataConfig{
			CreditLag3M:             13,
			SpreadPeriodsPerYear:    52,
			VIXPeriodsPerYear:       252,
			ValuationPeriodsPerYear: 52,
			EquityPeriods1M:         21,
			StaleAfterDays:          7,
		},
	}
}

// LoadFromFile reads a YAML overlay on top of the defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ordering and range constraints.
func (c Config) Validate() error {
	r := c.Regime
	if r.ScoreScale <= 0 || r.ScoreScale > 1 {
		return fmt.Errorf("regime.score_scale must be in (0, 1], got %.3f", r.ScoreScale)
	}
	th := r.Thresholds
	if th.CreditGrowthContraction >= th.CreditGrowthExpansion {
		return fmt.Errorf("credit_growth_contraction (%.2f) must be below credit_growth_expansion (%.2f)",
			th.CreditGrowthContraction, th.CreditGrowthExpansion)
	}
	if th.SpreadZScoreTight >= th.SpreadZScoreWide {
		return fmt.Errorf("spread_zscore_tight (%.2f) must be below spread_zscore_wide (%.2f)",
			th.SpreadZScoreTight, th.SpreadZScoreWide)
	}
	if !(th.VIXPercentileLow < th.VIXPercentileHigh && th.VIXPercentileHigh < th.VIXPercentileStress) {
		return fmt.Errorf("vix percentile thresholds must be strictly increasing, got %.0f/%.0f/%.0f",
			th.VIXPercentileLow, th.VIXPercentileHigh, th.VIXPercentileStress)
	}

	a := c.Alerts
	if a.BeliefGapYellow >= a.BeliefGapRed {
		return fmt.Errorf("belief_gap_yellow (%.2f) must be below belief_gap_red (%.2f)",
			a.BeliefGapYellow, a.BeliefGapRed)
	}
	if a.VIXPercentileYellow >= a.VIXPercentileRed {
		return fmt.Errorf("vix_percentile_yellow (%.0f) must be below vix_percentile_red (%.0f)",
			a.VIXPercentileYellow, a.VIXPercentileRed)
	}
	if a.SpreadPercentileYellow >= a.SpreadPercentileRed {
		return fmt.Errorf("spread_percentile_yellow (%.0f) must be below spread_percentile_red (%.0f)",
			a.SpreadPercentileYellow, a.SpreadPercentileRed)
	}
	if a.EquityDrawdownYellow <= a.EquityDrawdownRed {
		return fmt.Errorf("equity_drawdown_yellow (%.1f) must be above equity_drawdown_red (%.1f)",
			a.EquityDrawdownYellow, a.EquityDrawdownRed)
	}

	b := c.BalanceSheet
	if !(b.AbundantMin > b.AmpleMin && b.AmpleMin > b.TightMin && b.TightMin > 0) {
		return fmt.Errorf("reserve regime cut points must be strictly decreasing and positive, got %.0f/%.0f/%.0f",
			b.AbundantMin, b.AmpleMin, b.TightMin)
	}
	if b.RRPHaircut < 0 || b.RRPHaircut > 1 {
		return fmt.Errorf("balance_sheet.rrp_haircut must be in [0, 1], got %.2f", b.RRPHaircut)
	}
	if b.IdentityTolerance < 0 {
		return fmt.Errorf("balance_sheet.identity_tolerance must be non-negative, got %.1f", b.IdentityTolerance)
	}

	d := c.Data
	if d.CreditLag3M < 1 || d.SpreadPeriodsPerYear < 1 || d.VIXPeriodsPerYear < 1 ||
		d.ValuationPeriodsPerYear < 1 || d.EquityPeriods1M < 1 {
		return fmt.Errorf("data frequency hints must be positive")
	}
	if d.StaleAfterDays < 1 {
		return fmt.Errorf("data.stale_after_days must be positive, got %d", d.StaleAfterDays)
	}
	return nil
}
