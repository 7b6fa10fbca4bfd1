// liquidrun classifies market-liquidity regimes, evaluates warning
// rules and derives Fed balance-sheet diagnostics from CSV or sample
// data.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/macrowatch/liquidrun/internal/config"
	"github.com/macrowatch/liquidrun/internal/indicator"
	"github.com/macrowatch/liquidrun/internal/loader"
	"github.com/macrowatch/liquidrun/internal/metrics"
)

const version = "v0.1.0"

var (
	flagConfig      string
	flagCSVDir      string
	flagSample      bool
	flagSeed        int64
	flagAsOf        string
	flagJSON        bool
	flagMetricsAddr string
	flagVerbose     bool
)

var (
	appConfig  config.Config
	appMetrics *metrics.Registry
)

var rootCmd = &cobra.Command{
	Use:     "liquidrun",
	Short:   "Market-liquidity regime analytics",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initLogging()

		cfg := config.Default()
		if flagConfig != "" {
			loaded, err := config.LoadFromFile(flagConfig)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		appConfig = cfg

		appMetrics = metrics.NewRegistry()
		if flagMetricsAddr != "" {
			serveMetrics(flagMetricsAddr)
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to YAML config (defaults built in)")
	pf.StringVar(&flagCSVDir, "csv-dir", "", "directory of <indicator>.csv files")
	pf.BoolVar(&flagSample, "sample", false, "use the deterministic synthetic data set")
	pf.Int64Var(&flagSeed, "seed", 42, "seed for --sample data")
	pf.StringVar(&flagAsOf, "as-of", "", "evaluate as of this date (YYYY-MM-DD)")
	pf.BoolVar(&flagJSON, "json", false, "emit JSON instead of text")
	pf.StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.BoolVar(&flagVerbose, "verbose", false, "debug logging")

	rootCmd.AddCommand(regimeCmd, alertsCmd, bsheetCmd)
}

func initLogging() {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", appMetrics.Handler())
	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}

// loadIndicators builds the indicator set from the selected source.
func loadIndicators(ctx context.Context) (indicator.Set, error) {
	switch {
	case flagSample:
		return loader.NewSampleLoader(flagSeed, time.Now().UTC()).Set(), nil
	case flagCSVDir != "":
		return loader.LoadSet(ctx, loader.NewCSVLoader(flagCSVDir, log.Logger),
			indicator.RoleCreditGrowth, indicator.RoleBankCredit,
			indicator.RoleSpread, indicator.RoleHYSpread,
			indicator.RoleVIX, indicator.RoleEquity, indicator.RoleSP500,
			indicator.RoleValuation, indicator.RolePERatio,
			indicator.RoleEarnings, indicator.RoleForwardEPS,
			indicator.RoleReserves, indicator.RoleRRP, indicator.RoleTGA,
			indicator.RoleSOMA, indicator.RoleFedLending, indicator.RoleFedAssets,
		)
	default:
		return nil, fmt.Errorf("choose a data source: --csv-dir or --sample")
	}
}

func parseAsOf() (time.Time, error) {
	if flagAsOf == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", flagAsOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --as-of: %w", err)
	}
	return t.UTC(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
