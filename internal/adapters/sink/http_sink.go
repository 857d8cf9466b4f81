package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/karnsiree/subscription-radar/internal/core"
)

// HTTPSink delivers result batches to a downstream HTTP endpoint with a
// single synchronous POST. Delivery failures are reported, never retried.
type HTTPSink struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPSink creates a new HTTP sink
func NewHTTPSink(endpoint string, timeout time.Duration, logger *zap.Logger) *HTTPSink {
	return &HTTPSink{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Deliver posts the batch as JSON. Any status outside 2xx is a delivery
// failure.
func (s *HTTPSink) Deliver(ctx context.Context, batch *core.ResultBatch) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal result batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sink request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver batch to %s: %w", s.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sink returned status %d: %s", resp.StatusCode, string(body))
	}

	s.logger.Info("Delivered result batch",
		zap.String("endpoint", s.endpoint),
		zap.Int("records", len(batch.Subscriptions)))

	return nil
}
