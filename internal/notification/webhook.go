package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mohamedkhairy/signal-monitor/internal/models"
	"github.com/mohamedkhairy/signal-monitor/pkg/logger"
)

// WebhookPayload is the JSON body posted to webhook endpoints
type WebhookPayload struct {
	Title   string             `json:"title"`
	Message string             `json:"message"`
	Event   models.SignalEvent `json:"event"`
	SentAt  time.Time          `json:"sent_at"`
}

// WebhookNotifier posts events to a generic HTTP endpoint
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a webhook notifier
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the backend name
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// Send posts the event as JSON; any 2xx status is success
func (w *WebhookNotifier) Send(ctx context.Context, event models.SignalEvent) error {
	body, err := json.Marshal(WebhookPayload{
		Title:   Title(event),
		Message: FormatMessage(event),
		Event:   event,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", event.Key().String())

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}

	logger.Debug("Sent webhook notification",
		logger.String("event_id", event.ID),
		logger.String("url", w.url),
	)
	return nil
}
