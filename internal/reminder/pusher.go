package reminder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LogPusher writes reminders to the log instead of delivering them
type LogPusher struct {
	logger *zap.Logger
}

// NewLogPusher creates a LogPusher
func NewLogPusher(logger *zap.Logger) *LogPusher {
	return &LogPusher{logger: logger}
}

// Push logs msg
func (p *LogPusher) Push(_ context.Context, msg Message) error {
	p.logger.Info("reminder",
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.Any("data", msg.Data),
	)
	return nil
}

// WebhookPusher posts each reminder as JSON to a push gateway
type WebhookPusher struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookPusher creates a WebhookPusher. A nil client uses a 10 second timeout.
func NewWebhookPusher(url string, client *http.Client, logger *zap.Logger) *WebhookPusher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookPusher{
		url:    url,
		client: client,
		logger: logger,
	}
}

// Push sends msg once
func (p *WebhookPusher) Push(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push gateway returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
