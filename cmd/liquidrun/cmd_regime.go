package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/macrowatch/liquidrun/internal/regime"
)

var regimeCmd = &cobra.Command{
	Use:   "regime",
	Short: "Classify the current liquidity regime",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := parseAsOf()
		if err != nil {
			return err
		}
		ind, err := loadIndicators(cmd.Context())
		if err != nil {
			return err
		}

		stop := appMetrics.StepTimer("classify")
		classifier := regime.New(appConfig.Regime, appConfig.Data, log.Logger)
		res := classifier.Classify(ind, asOf)
		stop()
		appMetrics.RecordClassification(res.Primary.String())

		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(regimeJSON(res))
		}
		fmt.Print(regime.FormatReport(res))
		return nil
	},
}

// regimeJSON flattens a result for JSON output.
func regimeJSON(res regime.Result) map[string]any {
	scores := make(map[string]float64, len(res.Scores))
	for r, v := range res.Scores {
		scores[r.String()] = v
	}
	return map[string]any{
		"primary":      res.Primary.String(),
		"scores":       scores,
		"confidence":   res.Confidence,
		"explanations": res.Explanations,
		"warning":      res.Warning,
	}
}
