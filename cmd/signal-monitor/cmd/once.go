package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mohamedkhairy/signal-monitor/internal/monitor"
	"github.com/mohamedkhairy/signal-monitor/internal/notification"
)

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Run a single tick and exit",
	Long: `Fetch bars once, evaluate the newest bar of every symbol and notify any signal.

Example:
  signal-monitor once --symbols TSLA,AAPL`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTick(cmd.OutOrStdout(), func(ctx context.Context, s *monitor.Session) monitor.TickResult {
			return s.RunOnce(ctx)
		})
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Report the most recent signals in the fetched history",
	Long: `Fetch bars once and evaluate every bar of the history, reporting the newest
SCAN_LIMIT signals.

Example:
  signal-monitor scan --symbols NVDA`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTick(cmd.OutOrStdout(), func(ctx context.Context, s *monitor.Session) monitor.TickResult {
			return s.Backfill(ctx)
		})
	},
}

func init() {
	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(scanCmd)
}

func runTick(out io.Writer, tick func(context.Context, *monitor.Session) monitor.TickResult) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := tick(ctx, a.session)
	printTick(out, res)

	if res.FetchFailures == res.Symbols {
		return fmt.Errorf("no symbol could be fetched")
	}
	return nil
}

func printTick(out io.Writer, res monitor.TickResult) {
	fmt.Fprintf(out, "%s tick %s: %d symbols, %d signals (%d duplicates), %d fetch failures, %d delivery failures\n",
		res.Mode, res.TraceID, res.Symbols, res.Accepted, res.Suppressed, res.FetchFailures, res.Failed)
	for _, e := range res.Events {
		fmt.Fprintf(out, "\n%s\n", notification.FormatMessage(e))
	}
}
