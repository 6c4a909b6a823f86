package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mlb-briefing-service/internal/logging"
)

const webhookTimeout = 30 * time.Second

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Webhook posts rendered reports to a chat webhook. Delivery is best-effort:
// one attempt, failures logged, never retried.
type Webhook struct {
	url        string
	httpClient httpDoer
	logger     *slog.Logger
}

// NewWebhook constructs a webhook sender. httpClient may be nil.
func NewWebhook(url string, httpClient *http.Client, logger *slog.Logger) *Webhook {
	var doer httpDoer = httpClient
	if httpClient == nil {
		doer = &http.Client{Timeout: webhookTimeout}
	}
	return &Webhook{url: url, httpClient: doer, logger: logger}
}

// Send posts text as a {"text": ...} JSON payload.
func (w *Webhook) Send(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("report: marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("report: build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		logging.Error(w.logger, "webhook delivery failed", err)
		return fmt.Errorf("report: post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Error(w.logger, "webhook rejected report", nil,
			logging.FieldStatusCode, resp.StatusCode)
		return fmt.Errorf("report: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
