package notification

import (
	"errors"
	"fmt"

	"github.com/mohamedkhairy/signal-monitor/internal/config"
	"github.com/mohamedkhairy/signal-monitor/internal/storage"
)

// ErrRedisRequired is returned when a redis backend is configured without a client
var ErrRedisRequired = errors.New("redis client required")

// FromConfig builds the configured backends.
// A single backend is returned as is; several are wrapped in a MultiNotifier.
func FromConfig(cfg config.NotifyConfig, redis storage.Publisher) (Notifier, error) {
	var notifiers []Notifier
	for _, t := range cfg.Types {
		switch t {
		case config.NotifyLog:
			notifiers = append(notifiers, NewLogNotifier())
		case config.NotifyTelegram:
			notifiers = append(notifiers, NewTelegramNotifier(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID, cfg.Timeout))
		case config.NotifyWebhook:
			notifiers = append(notifiers, NewWebhookNotifier(cfg.WebhookURL, cfg.Timeout))
		case config.NotifyRedis:
			if redis == nil {
				return nil, fmt.Errorf("%s notifier: %w", t, ErrRedisRequired)
			}
			notifiers = append(notifiers, NewRedisNotifier(redis, cfg.RedisChannel, cfg.RedisStream))
		default:
			return nil, fmt.Errorf("unknown notifier type %q", t)
		}
	}

	switch len(notifiers) {
	case 0:
		return NewLogNotifier(), nil
	case 1:
		return notifiers[0], nil
	default:
		return NewMultiNotifier(notifiers...), nil
	}
}
