package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefaultCalibration(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 3.0, cfg.Regime.Thresholds.CreditGrowthExpansion)
	assert.Equal(t, 0.7, cfg.Regime.ScoreScale)
	assert.Equal(t, 40.0, cfg.Regime.Weights.VIXStress)
	assert.Equal(t, 0.6, cfg.Alerts.BeliefGapRed)
	assert.Equal(t, 50.0, cfg.BalanceSheet.IdentityTolerance)
	assert.Equal(t, 13, cfg.Data.CreditLag3M)
}

func TestLoadFromFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "liquidrun.yaml")
	body := `
regime:
  score_scale: 0.5
alerts:
  belief_gap_red: 0.9
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Regime.ScoreScale)
	assert.Equal(t, 0.9, cfg.Alerts.BeliefGapRed)
	assert.Equal(t, 0.3, cfg.Alerts.BeliefGapYellow, "untouched fields keep defaults")
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsBadOrdering(t *testing.T) {
	cfg := Default()
	cfg.Alerts.VIXPercentileYellow = 95
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Regime.ScoreScale = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.BalanceSheet.AmpleMin = 3000
	assert.Error(t, cfg.Validate())
}
