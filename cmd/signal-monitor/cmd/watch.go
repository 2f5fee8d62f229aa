package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/internal/notification"
	"github.com/mohamedkhairy/signal-monitor/internal/pubsub"
	"github.com/mohamedkhairy/signal-monitor/internal/storage"
	"github.com/mohamedkhairy/signal-monitor/pkg/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print signals published on the Redis notification channel",
	Long: `Subscribe to NOTIFY_REDIS_CHANNEL and print every signal published by a
monitor running with NOTIFY_TYPE including redis.

With --replay N the newest N entries of NOTIFY_REDIS_STREAM are printed first.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchReplay int64

func init() {
	watchCmd.Flags().Int64Var(&watchReplay, "replay", 0, "print the newest N signals from the stream before following the channel")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if watchReplay > 0 && cfg.Notify.RedisStream == "" {
		return fmt.Errorf("--replay needs NOTIFY_REDIS_STREAM")
	}

	redisClient, err := pubsub.NewRedisClient(cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := watchOptions{
		Channel: cfg.Notify.RedisChannel,
		Stream:  cfg.Notify.RedisStream,
		Replay:  watchReplay,
	}
	return watchSignals(ctx, redisClient, opts, func(e models.SignalEvent) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", notification.FormatMessage(e))
	})
}

type watchOptions struct {
	Channel string
	Stream  string
	Replay  int64 // stream entries printed before following the channel
}

// watchSignals replays recent stream entries, then decodes channel
// messages until the subscription ends
func watchSignals(ctx context.Context, sub storage.Subscriber, opts watchOptions, handle func(models.SignalEvent)) error {
	if opts.Replay > 0 {
		entries, err := sub.ReadStream(ctx, opts.Stream, opts.Replay)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if event, ok := decodeSignal(opts.Stream, entry.Values[notification.StreamField]); ok {
				handle(event)
			}
		}
	}

	messages, err := sub.Subscribe(ctx, opts.Channel)
	if err != nil {
		return err
	}

	logger.Info("Watching signals", logger.String("channel", opts.Channel))
	for msg := range messages {
		if event, ok := decodeSignal(msg.Channel, msg.Message); ok {
			handle(event)
		}
	}
	return nil
}

func decodeSignal(source, payload string) (models.SignalEvent, bool) {
	var event models.SignalEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		logger.Warn("Skipping malformed signal message",
			logger.String("source", source),
			logger.ErrorField(err),
		)
		return event, false
	}
	return event, true
}
