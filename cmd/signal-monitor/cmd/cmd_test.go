package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/internal/monitor"
	"github.com/mohamedkhairy/signal-monitor/internal/notification"
	"github.com/mohamedkhairy/signal-monitor/internal/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategy.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default strategy")

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "EMA: 5/10/20")
	assert.Contains(t, out, "policy: priority")

	_, err = execute(t, "config", "validate", "-f", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "signal-monitor version")
}

func TestWatchSignals(t *testing.T) {
	redis := storage.NewMockRedisClient()
	event := models.SignalEvent{
		ID:           "id-1",
		Symbol:       "TSLA",
		BarTimestamp: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
		Kind:         models.SellReversal,
		Price:        240,
		StopLoss:     250,
	}
	require.NoError(t, redis.Publish(context.Background(), "signals", event))
	require.NoError(t, redis.Publish(context.Background(), "other", event))
	redis.PubSubData = append(redis.PubSubData, storage.PubSubMessage{Channel: "signals", Message: "{not json"})

	var got []models.SignalEvent
	err := watchSignals(context.Background(), redis, watchOptions{Channel: "signals"}, func(e models.SignalEvent) {
		got = append(got, e)
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "id-1", got[0].ID)
	assert.Equal(t, models.SellReversal, got[0].Kind)
}

func TestWatchSignals_ReplaysStreamFirst(t *testing.T) {
	ctx := context.Background()
	redis := storage.NewMockRedisClient()
	for _, id := range []string{"old", "mid", "new"} {
		_, err := redis.AppendStream(ctx, "signals:stream", notification.StreamField, models.SignalEvent{ID: id, Symbol: "TSLA"})
		require.NoError(t, err)
	}
	require.NoError(t, redis.Publish(ctx, "signals", models.SignalEvent{ID: "live", Symbol: "TSLA"}))

	var ids []string
	opts := watchOptions{Channel: "signals", Stream: "signals:stream", Replay: 2}
	err := watchSignals(ctx, redis, opts, func(e models.SignalEvent) {
		ids = append(ids, e.ID)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"mid", "new", "live"}, ids)
}

func TestPrintTick(t *testing.T) {
	var out bytes.Buffer
	printTick(&out, monitor.TickResult{
		TraceID:  "01HZX",
		Mode:     "tail",
		Symbols:  2,
		Accepted: 1,
		Events: []models.SignalEvent{{
			Symbol:    "AAPL",
			Kind:      models.BuyReversal,
			Rationale: "Buy signal (EMA/MACD reversal) @ 190.00",
		}},
	})

	assert.Contains(t, out.String(), "tail tick 01HZX: 2 symbols, 1 signals")
	assert.Contains(t, out.String(), "BUY_REVERSAL AAPL")
}
