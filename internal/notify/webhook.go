// Package notify delivers advisory alerts to an external notification
// endpoint.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Webhook POSTs alerts as JSON to a companion notification endpoint, for
// example the mobile client's push relay.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook notifier for the given URL.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Notify implements advisor.Notifier. The caller logs failures; delivery is
// best-effort and never retried here.
func (w *Webhook) Notify(title, message string) error {
	payload, err := json.Marshal(map[string]string{
		"title":   title,
		"message": message,
	})
	if err != nil {
		return fmt.Errorf("failed to encode alert payload: %w", err)
	}

	resp, err := w.client.Post(w.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
