package cmd

import (
	"fmt"

	"github.com/mohamedkhairy/signal-monitor/internal/alert"
	"github.com/mohamedkhairy/signal-monitor/internal/cache"
	"github.com/mohamedkhairy/signal-monitor/internal/config"
	"github.com/mohamedkhairy/signal-monitor/internal/data"
	"github.com/mohamedkhairy/signal-monitor/internal/monitor"
	"github.com/mohamedkhairy/signal-monitor/internal/notification"
	"github.com/mohamedkhairy/signal-monitor/internal/pubsub"
	"github.com/mohamedkhairy/signal-monitor/internal/series"
	"github.com/mohamedkhairy/signal-monitor/internal/signal"
	"github.com/mohamedkhairy/signal-monitor/internal/storage"
	"github.com/mohamedkhairy/signal-monitor/pkg/logger"
)

// app holds the wired components of one process
type app struct {
	cfg     *config.Config
	redis   storage.RedisClient
	session *monitor.Session
}

// newApp wires provider, cache, classifier, gate and notifier into a session
func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	if cfg.NeedsRedis() {
		redisClient, err := pubsub.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redis = redisClient
	}

	provider, err := data.NewProviderFactory().CreateProvider(cfg.Monitor.Provider, data.ProviderConfig{
		BarInterval: cfg.Monitor.BarInterval,
		Bars:        cfg.Monitor.MockBars,
		CSVDir:      cfg.Monitor.CSVDir,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	switch cfg.Cache.Type {
	case "memory":
		provider = data.NewCachedProvider(provider, cache.NewMemoryCache(cfg.Cache.TTL))
	case "redis":
		provider = data.NewCachedProvider(provider, cache.NewRedisCache(a.redis, cfg.Cache.TTL, cfg.Cache.KeyPrefix))
	}

	classifier, err := signal.NewClassifier(cfg.Strategy.Signals)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifier, err := notification.FromConfig(cfg.Notify, a.redis)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}

	a.session, err = monitor.NewSession(monitor.Config{
		Symbols:      cfg.Monitor.Symbols,
		Interval:     cfg.Monitor.Interval,
		FetchWorkers: cfg.Monitor.FetchWorkers,
		Indicators:   cfg.Strategy.Indicators,
	}, provider, series.NewStore(cfg.Monitor.MaxBars), classifier, alert.NewDedupGate(), notifier)
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Info("Signal monitor configured",
		logger.Any("symbols", cfg.Monitor.Symbols),
		logger.String("provider", provider.GetName()),
		logger.String("cache", cfg.Cache.Type),
		logger.String("notifier", notifier.Name()),
		logger.String("policy", string(cfg.Strategy.Signals.Policy)),
	)
	return a, nil
}

// Close releases external connections
func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			logger.Warn("Failed to close Redis client", logger.ErrorField(err))
		}
	}
}
