package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/randalmurphal/rake/pkg/rake/env"
	"github.com/randalmurphal/rake/pkg/rake/event"
	"github.com/randalmurphal/rake/pkg/rake/retry"
)

// Batch is the payload posted to the collector.
type Batch struct {
	ID     string            `json:"batch_id"`
	Events []*event.Document `json:"events"`
}

// Sender transmits one batch to an endpoint.
type Sender interface {
	Send(ctx context.Context, endpoint string, batch Batch) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, endpoint string, batch Batch) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, endpoint string, batch Batch) error {
	return f(ctx, endpoint, batch)
}

// HTTPSender posts batches as JSON.
type HTTPSender struct {
	client    *http.Client
	userAgent string
}

// NewHTTPSender creates an HTTPSender. A nil client gets a 30s timeout client.
func NewHTTPSender(client *http.Client) *HTTPSender {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSender{
		client:    client,
		userAgent: "rake-" + env.LibName + "/" + env.LibVersion,
	}
}

// Send implements Sender. Non-2xx responses are returned as *retry.HTTPError.
func (s *HTTPSender) Send(ctx context.Context, endpoint string, batch Batch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return retry.Permanent(err, "encode batch")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("X-Rake-Batch-Id", batch.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    strings.TrimSpace(string(snippet)),
		}
	}
	return nil
}
