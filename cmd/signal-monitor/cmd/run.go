package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mohamedkhairy/signal-monitor/internal/api"
	"github.com/mohamedkhairy/signal-monitor/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll bars continuously and report new signals",
	Long: `Run ticks immediately and then every MONITOR_INTERVAL until interrupted.
Each tick evaluates the newest bar of every symbol and notifies each new signal once.
A status API (health, metrics, recent signals) is served on MONITOR_HTTP_PORT.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var runBackfill bool

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runBackfill, "backfill", false, "report recent signals from history before tailing")
}

func runRun(cmd *cobra.Command, args []string) error {
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

	if runBackfill {
		res := a.session.Backfill(ctx)
		logger.Info("Backfill complete",
			logger.Int("accepted", res.Accepted),
			logger.Int("fetch_failures", res.FetchFailures),
		)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Monitor.HTTPPort),
		Handler:      api.NewHandler(a.session),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("Starting HTTP server",
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed",
				logger.ErrorField(err),
			)
		}
	}()

	runErr := a.session.Run(ctx)

	logger.Info("Shutting down signal monitor")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", logger.ErrorField(err))
	}
	wg.Wait()

	stats := a.session.GetStats()
	logger.Info("Signal monitor stopped",
		logger.Int64("ticks", stats.Ticks),
		logger.Int64("accepted", stats.Accepted),
		logger.Int64("delivery_failures", stats.DeliveryFailures),
	)
	return runErr
}
