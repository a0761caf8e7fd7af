package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"3tcapital/ms_service_documents/internal/core/document"
	httpclient "3tcapital/ms_service_documents/internal/infrastructure/http"
)

// Doer executes HTTP requests. *http.Client and the traced client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures the records backend client.
type Config struct {
	BaseURL        string
	Token          string
	RequestsPerSec float64
	Burst          int
	MaxConcurrent  int64
	MaxFailures    int
	Cooldown       time.Duration
}

// Client reads quotation and invoice records from the service center REST
// backend. It implements document.RecordSource.
type Client struct {
	baseURL string
	token   string
	http    Doer
	limiter *rate.Limiter
	slots   *semaphore.Weighted
	breaker *CircuitBreaker
	log     *slog.Logger
}

// NewClient creates a backend client.
func NewClient(cfg Config, doer Doer, log *slog.Logger) *Client {
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 20
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 16
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    doer,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		slots:   semaphore.NewWeighted(cfg.MaxConcurrent),
		breaker: NewCircuitBreaker(cfg.MaxFailures, cfg.Cooldown, func(err error) bool {
			return errors.Is(err, document.ErrSourceUnavailable)
		}),
		log: log,
	}
}

// FetchRecord returns GET {base}/{collection}/{id}.
func (c *Client) FetchRecord(ctx context.Context, kind document.Kind, id string) (map[string]any, error) {
	var record map[string]any
	if err := c.get(ctx, "fetch_"+string(kind), c.endpoint(kind, id), &record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%s %s: empty body: %w", kind, id, document.ErrRecordNotFound)
	}
	return record, nil
}

// FetchItems returns GET {base}/{collection}/{id}/items. The backend answers
// with a bare array or wraps it in "data" or "items".
func (c *Client) FetchItems(ctx context.Context, kind document.Kind, id string) ([]any, error) {
	var body any
	if err := c.get(ctx, "fetch_"+string(kind)+"_items", c.endpoint(kind, id)+"/items", &body); err != nil {
		return nil, err
	}

	switch v := body.(type) {
	case []any:
		return v, nil
	case map[string]any:
		for _, key := range []string{"data", "items", "line_items"} {
			if list, ok := v[key].([]any); ok {
				return list, nil
			}
		}
	}
	return []any{}, nil
}

// Ready reports ErrCircuitOpen while the breaker is rejecting calls. It
// never touches the network.
func (c *Client) Ready(_ context.Context) error {
	if c.breaker.State() == BreakerOpen {
		return ErrCircuitOpen
	}
	return nil
}

func (c *Client) endpoint(kind document.Kind, id string) string {
	return c.baseURL + "/" + kind.Collection() + "/" + url.PathEscape(id)
}

func (c *Client) get(ctx context.Context, operation, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	if err := c.slots.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.slots.Release(1)

	err := c.breaker.Execute(ctx, func() error {
		return c.do(ctx, operation, endpoint, out)
	})
	if errors.Is(err, ErrCircuitOpen) {
		c.log.Warn("Records backend circuit open, failing fast", "operation", operation)
		return fmt.Errorf("%s: %w: %w", operation, document.ErrSourceUnavailable, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, operation, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(httpclient.WithOperation(ctx, operation), http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w: %v", operation, document.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", operation, document.ErrRecordNotFound)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s: status %d: %w", operation, resp.StatusCode, document.ErrSourceUnavailable)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s: unexpected status %d: %w", operation, resp.StatusCode, document.ErrSourceUnavailable)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, 8<<20))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%s: decode body: %w: %v", operation, document.ErrSourceUnavailable, err)
	}
	return nil
}
