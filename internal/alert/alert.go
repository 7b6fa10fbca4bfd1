// Package alert evaluates early-warning rules over indicator series and
// keeps an append-only history of everything that fired. The engine is
// single-writer: one goroutine calls CheckAll, so history needs no lock.
package alert

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/macrowatch/liquidrun/internal/config"
	"github.com/macrowatch/liquidrun/internal/indicator"
)

// Level is the alert severity.
type Level int

const (
	Green Level = iota
	Yellow
	Red
)

var levelNames = [...]string{"Green", "Yellow", "Red"}

func (l Level) String() string {
	if l < Green || l > Red {
		return "Unknown"
	}
	return levelNames[l]
}

// Rule identifiers.
const (
	RuleBeliefOverheating = "belief_overheating"
	RuleCollateralStress  = "collateral_stress"
	RuleCreditContraction = "credit_contraction"
)

// Alert is one fired warning. Checks always lists exactly two follow-up
// items the reader should verify by hand.
type Alert struct {
	ID                string    `json:"id"`
	Rule              string    `json:"rule"`
	Level             Level     `json:"-"`
	LevelName         string    `json:"level"`
	Title             string    `json:"title"`
	WhatChanged       string    `json:"what_changed"`
	VulnerabilityPath string    `json:"vulnerability_path"`
	Checks            [2]string `json:"checks"`
	CreatedAt         time.Time `json:"created_at"`
}

// Engine evaluates the rules and owns the alert history.
type Engine struct {
	cfg     config.AlertsConfig
	data    config.DataConfig
	log     zerolog.Logger
	history []Alert
	now     func() time.Time
}

// New returns an engine with the given thresholds. Pass zerolog.Nop()
// to keep it silent.
func New(cfg config.AlertsConfig, data config.DataConfig, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:  cfg,
		data: data,
		log:  log.With().Str("component", "alert").Logger(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// CheckAll evaluates every rule against the indicator set as of the
// given time (zero time = latest data) and returns the alerts that
// fired, in rule order. Fired alerts are appended to history. Rules
// whose inputs are missing or too short stay silent.
func (e *Engine) CheckAll(ind indicator.Set, asOf time.Time) []Alert {
	ind = ind.AsOf(asOf)

	var fired []Alert
	for _, rule := range []func(indicator.Set) *Alert{
		e.checkBeliefOverheating,
		e.checkCollateralStress,
		e.checkCreditContraction,
	} {
		a := rule(ind)
		if a == nil {
			continue
		}
		a.ID = uuid.NewString()
		a.LevelName = a.Level.String()
		a.CreatedAt = e.now()
		e.history = append(e.history, *a)
		fired = append(fired, *a)
		e.log.Info().
			Str("rule", a.Rule).
			Str("level", a.Level.String()).
			Str("what_changed", a.WhatChanged).
			Msg("alert fired")
	}
	return fired
}

// Recent returns up to n alerts, most recent first.
func (e *Engine) Recent(n int) []Alert {
	if n > len(e.history) {
		n = len(e.history)
	}
	out := make([]Alert, n)
	for i := 0; i < n; i++ {
		out[i] = e.history[len(e.history)-1-i]
	}
	return out
}

// HistoryLen returns the total number of alerts ever fired.
func (e *Engine) HistoryLen() int { return len(e.history) }

// Summary counts alert levels over the last 10 fired alerts.
func (e *Engine) Summary() map[Level]int {
	out := map[Level]int{Green: 0, Yellow: 0, Red: 0}
	for _, a := range e.Recent(10) {
		out[a.Level]++
	}
	return out
}
