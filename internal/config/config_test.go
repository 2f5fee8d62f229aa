package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/signal-monitor/internal/signal"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"TSLA"}, cfg.Monitor.Symbols)
	assert.Equal(t, 60*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 10, cfg.Monitor.FetchWorkers)
	assert.Equal(t, "mock", cfg.Monitor.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Monitor.BarInterval)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{NotifyLog}, cfg.Notify.Types)
	assert.Equal(t, DefaultStrategy(), cfg.Strategy)
	assert.False(t, cfg.NeedsRedis())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MONITOR_SYMBOLS", "aapl, MSFT ,,NVDA")
	t.Setenv("MONITOR_INTERVAL", "30s")
	t.Setenv("MONITOR_FETCH_WORKERS", "4")
	t.Setenv("CACHE_TYPE", "redis")
	t.Setenv("NOTIFY_TYPE", "log,webhook")
	t.Setenv("WEBHOOK_URL", "http://example.invalid/hook")
	t.Setenv("EMA_FAST", "8")
	t.Setenv("VOLUME_SURGE", "1.5")
	t.Setenv("TARGET_MULTIPLIER", "1.05")
	t.Setenv("SIGNAL_POLICY", "independent")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"aapl", "MSFT", "NVDA"}, cfg.Monitor.Symbols)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 4, cfg.Monitor.FetchWorkers)
	assert.Equal(t, []string{NotifyLog, NotifyWebhook}, cfg.Notify.Types)
	assert.Equal(t, 8, cfg.Strategy.Indicators.FastPeriod)
	assert.Equal(t, 1.5, cfg.Strategy.Signals.VolumeSurge)
	assert.Equal(t, 1.05, cfg.Strategy.Signals.TargetMultiplier)
	assert.Equal(t, signal.PolicyIndependent, cfg.Strategy.Signals.Policy)
	assert.True(t, cfg.NeedsRedis())
}

func TestLoad_InvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown provider", map[string]string{"MONITOR_PROVIDER": "yahoo"}},
		{"csv without dir", map[string]string{"MONITOR_PROVIDER": "csv"}},
		{"unknown cache", map[string]string{"CACHE_TYPE": "disk"}},
		{"telegram without token", map[string]string{"NOTIFY_TYPE": "telegram"}},
		{"webhook without url", map[string]string{"NOTIFY_TYPE": "webhook"}},
		{"unknown notifier", map[string]string{"NOTIFY_TYPE": "sms"}},
		{"target out of range", map[string]string{"TARGET_MULTIPLIER": "1.2"}},
		{"macd periods inverted", map[string]string{"MACD_FAST": "30"}},
		{"unknown policy", map[string]string{"SIGNAL_POLICY": "random"}},
		{"zero workers", map[string]string{"MONITOR_FETCH_WORKERS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadStrategyFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	content := `
indicators:
  ema_fast: 3
  window: 10
signals:
  volume_surge: 1.4
  policy: independent
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s, err := LoadStrategyFile(path)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Indicators.FastPeriod)
	assert.Equal(t, 10, s.Indicators.Window)
	assert.Equal(t, 10, s.Indicators.MidPeriod)
	assert.Equal(t, 26, s.Indicators.MACDSlow)
	assert.Equal(t, 1.4, s.Signals.VolumeSurge)
	assert.Equal(t, 0.98, s.Signals.BuyStopBuffer)
	assert.Equal(t, signal.PolicyIndependent, s.Signals.Policy)
}

func TestLoadStrategyFile_Errors(t *testing.T) {
	_, err := LoadStrategyFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("signals:\n  target_multiplier: 2.0\n"), 0644))
	_, err = LoadStrategyFile(path)
	assert.Error(t, err)
}

func TestStrategy_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	s := DefaultStrategy()
	s.Signals.ScanLimit = 8

	for _, name := range []string{"strategy.yaml", "strategy.json"} {
		path := filepath.Join(dir, name)
		require.NoError(t, s.SaveToFile(path))

		loaded, err := LoadStrategyFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, s, *loaded, name)
	}
}

func TestLoad_StrategyFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("signals:\n  scan_limit: 7\n  volume_surge: 1.3\n"), 0644))

	t.Setenv("MONITOR_STRATEGY_FILE", path)
	t.Setenv("VOLUME_SURGE", "1.6")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Strategy.Signals.ScanLimit)
	assert.Equal(t, 1.6, cfg.Strategy.Signals.VolumeSurge)
}
