package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohamedkhairy/signal-monitor/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate strategy files",
	Long: `Manage strategy files holding indicator periods and signal thresholds.

Subcommands:
  init     - Write the default strategy
  validate - Load and validate a strategy file

Examples:
  signal-monitor config init -o strategy.yaml
  signal-monitor config validate -f strategy.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default strategy file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a strategy file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "strategy.yaml", "output strategy file path (.yaml or .json)")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to strategy file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	strategy := config.DefaultStrategy()
	if err := strategy.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save strategy: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created default strategy: %s\n", configInitOutput)
	fmt.Fprintf(out, "Run with:\n  MONITOR_STRATEGY_FILE=%s signal-monitor run\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	strategy, err := config.LoadStrategyFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	ind := strategy.Indicators
	sig := strategy.Signals
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Strategy valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  EMA: %d/%d/%d  MACD: %d/%d/%d  window: %d  warm-up: %d\n",
		ind.FastPeriod, ind.MidPeriod, ind.SlowPeriod, ind.MACDFast, ind.MACDSlow, ind.MACDSignal, ind.Window, ind.MinWarmup)
	fmt.Fprintf(out, "  volume surge: %.2fx  stops: %.2f/%.2f  target: %.2fx  policy: %s\n",
		sig.VolumeSurge, sig.BuyStopBuffer, sig.SellStopBuffer, sig.TargetMultiplier, sig.Policy)
	return nil
}
