package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/macrowatch/liquidrun/internal/alert"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Evaluate the early-warning rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := parseAsOf()
		if err != nil {
			return err
		}
		ind, err := loadIndicators(cmd.Context())
		if err != nil {
			return err
		}

		stop := appMetrics.StepTimer("alerts")
		engine := alert.New(appConfig.Alerts, appConfig.Data, log.Logger)
		fired := engine.CheckAll(ind, asOf)
		stop()
		for _, a := range fired {
			appMetrics.RecordAlert(a.Rule, a.Level.String())
		}

		if flagJSON {
			return json.NewEncoder(os.Stdout).Encode(fired)
		}
		if len(fired) == 0 {
			fmt.Println("All clear: no warning rules fired.")
			return nil
		}
		for _, a := range fired {
			fmt.Printf("[%s] %s\n", a.Level, a.Title)
			fmt.Printf("  what changed:  %s\n", a.WhatChanged)
			fmt.Printf("  vulnerability: %s\n", a.VulnerabilityPath)
			fmt.Printf("  check next:    %s; %s\n\n", a.Checks[0], a.Checks[1])
		}
		return nil
	},
}
