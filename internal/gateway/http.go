package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/norwichevents/eventpipe/internal/config"
	"github.com/norwichevents/eventpipe/internal/event"
)

// HTTPGateway submits events to the spreadsheet-backed API as JSON over
// POST. Production behavior is a single attempt per event; a bounded
// exponential retry can be enabled via max_retries in config.
type HTTPGateway struct {
	url        string
	maxRetries int
	client     *http.Client
}

// NewHTTP creates an HTTP gateway from config.
func NewHTTP(cfg config.GatewayConfig) (*HTTPGateway, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("gateway URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPGateway{
		url:        cfg.URL,
		maxRetries: cfg.MaxRetries,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Submit posts one event. A non-2xx status, a malformed response body
// or success=false from the API all count as submission failures.
func (g *HTTPGateway) Submit(ctx context.Context, e *event.Event) (*Result, error) {
	if g.maxRetries <= 0 {
		return g.submitOnce(ctx, e)
	}

	var result *Result
	operation := func() error {
		r, err := g.submitOnce(ctx, e)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(g.maxRetries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return result, nil
}

func (g *HTTPGateway) submitOnce(ctx context.Context, e *event.Event) (*Result, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submitting event: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway error (status %d)", resp.StatusCode)
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}
