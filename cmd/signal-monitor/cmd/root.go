package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohamedkhairy/signal-monitor/internal/config"
	"github.com/mohamedkhairy/signal-monitor/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:   "signal-monitor",
	Short: "Indicator and trading signal monitor",
	Long: `signal-monitor polls OHLCV bars for a set of symbols, computes EMA, MACD,
rolling volume and resistance, and reports each new buy or sell signal exactly once.

Configuration comes from the environment (and an optional .env file).
A YAML strategy file can override indicator periods and signal thresholds.

Examples:
  signal-monitor run --symbols TSLA,AAPL
  signal-monitor once --provider csv --csv-dir ./data
  signal-monitor scan --symbols NVDA
  signal-monitor config init -o strategy.yaml`,
	SilenceUsage: true,
}

var (
	flagSymbols  string
	flagProvider string
	flagCSVDir   string
	flagStrategy string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer logger.Sync()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSymbols, "symbols", "", "comma separated symbols (overrides MONITOR_SYMBOLS)")
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "bar provider: mock or csv (overrides MONITOR_PROVIDER)")
	rootCmd.PersistentFlags().StringVar(&flagCSVDir, "csv-dir", "", "directory of {SYMBOL}.csv files (overrides MONITOR_CSV_DIR)")
	rootCmd.PersistentFlags().StringVar(&flagStrategy, "strategy", "", "YAML strategy file (overrides MONITOR_STRATEGY_FILE)")
}

// loadConfig loads the environment configuration, applies flag overrides and initializes the logger
func loadConfig() (*config.Config, error) {
	if flagStrategy != "" {
		os.Setenv("MONITOR_STRATEGY_FILE", flagStrategy)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	changed := false
	if flagSymbols != "" {
		var symbols []string
		for _, s := range strings.Split(flagSymbols, ",") {
			if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
				symbols = append(symbols, s)
			}
		}
		cfg.Monitor.Symbols = symbols
		changed = true
	}
	if flagProvider != "" {
		cfg.Monitor.Provider = flagProvider
		changed = true
	}
	if flagCSVDir != "" {
		cfg.Monitor.CSVDir = flagCSVDir
		changed = true
	}
	if changed {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}

	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
