package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mohamedkhairy/signal-monitor/internal/signal"
)

// Config holds all configuration for the application
type Config struct {
	// Common
	Environment string
	LogLevel    string

	// Redis
	Redis RedisConfig

	Monitor MonitorConfig
	Cache   CacheConfig
	Notify  NotifyConfig

	// Strategy holds indicator periods and signal thresholds
	Strategy Strategy
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// MonitorConfig holds polling session configuration
type MonitorConfig struct {
	Symbols      []string
	Interval     time.Duration // time between ticks
	FetchWorkers int           // concurrent bar fetches
	Provider     string        // "mock" or "csv"
	CSVDir       string        // directory of {SYMBOL}.csv files for the csv provider
	BarInterval  time.Duration // bar size produced by the mock provider
	MockBars     int           // bars per fetch produced by the mock provider
	MaxBars      int           // bars kept per symbol
	HTTPPort     int
	StrategyFile string // optional YAML strategy file
}

// CacheConfig holds fetch cache configuration
type CacheConfig struct {
	Type      string // "memory", "redis" or "none"
	TTL       time.Duration
	KeyPrefix string
}

// NotifyConfig holds notification backend configuration
type NotifyConfig struct {
	Types            []string // any of "log", "telegram", "webhook", "redis"
	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string
	WebhookURL       string
	RedisChannel     string
	RedisStream      string // optional stream that also receives accepted signals
	Timeout          time.Duration
}

// Notification backend names
const (
	NotifyLog      = "log"
	NotifyTelegram = "telegram"
	NotifyWebhook  = "webhook"
	NotifyRedis    = "redis"
)

// Load loads configuration from environment variables
// It automatically loads .env file if it exists in the current directory
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Monitor: MonitorConfig{
			Symbols:      getEnvAsStringSlice("MONITOR_SYMBOLS", []string{"TSLA"}),
			Interval:     getEnvAsDuration("MONITOR_INTERVAL", 60*time.Second),
			FetchWorkers: getEnvAsInt("MONITOR_FETCH_WORKERS", 10),
			Provider:     getEnv("MONITOR_PROVIDER", "mock"),
			CSVDir:       getEnv("MONITOR_CSV_DIR", ""),
			BarInterval:  getEnvAsDuration("MONITOR_BAR_INTERVAL", 5*time.Minute),
			MockBars:     getEnvAsInt("MONITOR_MOCK_BARS", 390), // five sessions of 5-minute bars
			MaxBars:      getEnvAsInt("MONITOR_MAX_BARS", 500),
			HTTPPort:     getEnvAsInt("MONITOR_HTTP_PORT", 8090),
			StrategyFile: getEnv("MONITOR_STRATEGY_FILE", ""),
		},
		Cache: CacheConfig{
			Type:      getEnv("CACHE_TYPE", "memory"),
			TTL:       getEnvAsDuration("CACHE_TTL", 60*time.Second),
			KeyPrefix: getEnv("CACHE_KEY_PREFIX", "bars"),
		},
		Notify: NotifyConfig{
			Types:            getEnvAsStringSlice("NOTIFY_TYPE", []string{NotifyLog}),
			TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
			TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
			WebhookURL:       getEnv("WEBHOOK_URL", ""),
			RedisChannel:     getEnv("NOTIFY_REDIS_CHANNEL", "signals"),
			RedisStream:      getEnv("NOTIFY_REDIS_STREAM", ""),
			Timeout:          getEnvAsDuration("NOTIFY_TIMEOUT", 10*time.Second),
		},
	}

	strategy := DefaultStrategy()
	if cfg.Monitor.StrategyFile != "" {
		loaded, err := LoadStrategyFile(cfg.Monitor.StrategyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load strategy file: %w", err)
		}
		strategy = *loaded
	}
	if err := applyStrategyEnv(&strategy); err != nil {
		return nil, fmt.Errorf("invalid strategy override: %w", err)
	}
	cfg.Strategy = strategy

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.Monitor.Symbols) == 0 {
		return fmt.Errorf("MONITOR_SYMBOLS must contain at least one symbol")
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL must be positive")
	}
	if c.Monitor.FetchWorkers < 1 {
		return fmt.Errorf("MONITOR_FETCH_WORKERS must be at least 1")
	}
	switch c.Monitor.Provider {
	case "mock":
		if c.Monitor.BarInterval <= 0 || c.Monitor.MockBars < 1 {
			return fmt.Errorf("MONITOR_BAR_INTERVAL and MONITOR_MOCK_BARS must be positive for the mock provider")
		}
	case "csv":
		if c.Monitor.CSVDir == "" {
			return fmt.Errorf("MONITOR_CSV_DIR is required for the csv provider")
		}
	default:
		return fmt.Errorf("unknown MONITOR_PROVIDER %q", c.Monitor.Provider)
	}

	switch c.Cache.Type {
	case "memory", "none":
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown CACHE_TYPE %q", c.Cache.Type)
	}

	for _, t := range c.Notify.Types {
		switch t {
		case NotifyLog:
		case NotifyTelegram:
			if c.Notify.TelegramBotToken == "" || c.Notify.TelegramChatID == "" {
				return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required for telegram notifications")
			}
		case NotifyWebhook:
			if c.Notify.WebhookURL == "" {
				return fmt.Errorf("WEBHOOK_URL is required for webhook notifications")
			}
		case NotifyRedis:
			if c.Redis.Host == "" || c.Notify.RedisChannel == "" {
				return fmt.Errorf("REDIS_HOST and NOTIFY_REDIS_CHANNEL are required for redis notifications")
			}
		default:
			return fmt.Errorf("unknown NOTIFY_TYPE %q", t)
		}
	}

	return c.Strategy.Validate()
}

// NeedsRedis reports whether any configured component talks to Redis
func (c *Config) NeedsRedis() bool {
	if c.Cache.Type == "redis" {
		return true
	}
	for _, t := range c.Notify.Types {
		if t == NotifyRedis {
			return true
		}
	}
	return false
}

// applyStrategyEnv overlays strategy values set in the environment
func applyStrategyEnv(s *Strategy) error {
	ind := &s.Indicators
	ind.FastPeriod = getEnvAsInt("EMA_FAST", ind.FastPeriod)
	ind.MidPeriod = getEnvAsInt("EMA_MID", ind.MidPeriod)
	ind.SlowPeriod = getEnvAsInt("EMA_SLOW", ind.SlowPeriod)
	ind.MACDFast = getEnvAsInt("MACD_FAST", ind.MACDFast)
	ind.MACDSlow = getEnvAsInt("MACD_SLOW", ind.MACDSlow)
	ind.MACDSignal = getEnvAsInt("MACD_SIGNAL", ind.MACDSignal)
	ind.Window = getEnvAsInt("ROLLING_WINDOW", ind.Window)
	ind.MinWarmup = getEnvAsInt("INDICATOR_WARMUP", ind.MinWarmup)

	sig := &s.Signals
	sig.VolumeSurge = getEnvAsFloat("VOLUME_SURGE", sig.VolumeSurge)
	sig.BuyStopBuffer = getEnvAsFloat("BUY_STOP_BUFFER", sig.BuyStopBuffer)
	sig.SellStopBuffer = getEnvAsFloat("SELL_STOP_BUFFER", sig.SellStopBuffer)
	sig.TargetMultiplier = getEnvAsFloat("TARGET_MULTIPLIER", sig.TargetMultiplier)
	sig.StopLookback = getEnvAsInt("STOP_LOOKBACK", sig.StopLookback)
	sig.MinBars = getEnvAsInt("SIGNAL_WARMUP", sig.MinBars)
	sig.ScanLimit = getEnvAsInt("SCAN_LIMIT", sig.ScanLimit)

	if raw := os.Getenv("SIGNAL_POLICY"); raw != "" {
		policy, err := signal.ParsePolicy(raw)
		if err != nil {
			return err
		}
		sig.Policy = policy
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return floatValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Split by comma and trim spaces
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
