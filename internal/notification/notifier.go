// Package notification delivers accepted signal events to external channels.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/pkg/logger"
)

// Notifier is the interface for all notification backends
type Notifier interface {
	// Send delivers one event. Returns error if delivery fails; there is no retry.
	Send(ctx context.Context, event models.SignalEvent) error
	// Name identifies the backend in logs and metrics
	Name() string
}

// DeliveryResult is the outcome of a single delivery attempt
type DeliveryResult struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

// Deliver sends an event and reports the outcome instead of an error
func Deliver(ctx context.Context, n Notifier, event models.SignalEvent) DeliveryResult {
	if err := n.Send(ctx, event); err != nil {
		return DeliveryResult{Success: false, Detail: fmt.Sprintf("%s: %v", n.Name(), err)}
	}
	return DeliveryResult{Success: true, Detail: "delivered via " + n.Name()}
}

// Title returns the short headline of an event, e.g. "BUY_BREAKOUT AAPL"
func Title(event models.SignalEvent) string {
	return fmt.Sprintf("%s %s", event.Kind, event.Symbol)
}

// displayIndicators are the indicator values appended to messages, in order
var displayIndicators = []string{"ema_fast", "ema_mid", "macd", "macd_signal", "avg_volume", "resistance"}

// FormatMessage renders the plain-text body sent to chat style backends
func FormatMessage(event models.SignalEvent) string {
	var b strings.Builder
	b.WriteString(Title(event))
	b.WriteString("\n")
	b.WriteString(event.Rationale)

	var values []string
	for _, name := range displayIndicators {
		if v, ok := event.Indicators[name]; ok {
			values = append(values, name+"="+decimal.NewFromFloat(v).StringFixed(2))
		}
	}
	if len(values) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(values, " "))
	}
	return b.String()
}

// LogNotifier writes events to the structured log; useful for development
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Name returns the backend name
func (n *LogNotifier) Name() string {
	return "log"
}

// Send logs the event
func (n *LogNotifier) Send(ctx context.Context, event models.SignalEvent) error {
	logger.WithContext(ctx).Info("Signal",
		logger.String("event_id", event.ID),
		logger.Symbol(event.Symbol),
		logger.Kind(string(event.Kind)),
		logger.Time("bar_timestamp", event.BarTimestamp),
		logger.Float64("price", event.Price),
		logger.Float64("stop_loss", event.StopLoss),
		logger.String("rationale", event.Rationale),
	)
	return nil
}

// MultiNotifier fans an event out to several backends.
// Every backend is attempted; the first error is returned.
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a fan-out notifier
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Name lists the wrapped backends
func (m *MultiNotifier) Name() string {
	names := make([]string, len(m.notifiers))
	for i, n := range m.notifiers {
		names[i] = n.Name()
	}
	return strings.Join(names, "+")
}

// Send delivers to every backend
func (m *MultiNotifier) Send(ctx context.Context, event models.SignalEvent) error {
	var firstErr error
	for _, n := range m.notifiers {
		if err := n.Send(ctx, event); err != nil {
			logger.Warn("Notification backend failed",
				logger.String("backend", n.Name()),
				logger.String("event_id", event.ID),
				logger.ErrorField(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", n.Name(), err)
			}
		}
	}
	return firstErr
}
