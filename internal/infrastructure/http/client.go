package http

import (
	"fmt"
	"net/http"
	"time"
)

// ClientConfig holds configuration for HTTP clients.
type ClientConfig struct {
	Timeout   time.Duration
	Transport http.RoundTripper
	// MaxRedirects caps followed redirects; 0 keeps the net/http default of 10.
	MaxRedirects int
}

// NewClient creates an HTTP client. A nil config gives a 30s timeout.
func NewClient(config *ClientConfig) *http.Client {
	if config == nil {
		config = &ClientConfig{Timeout: 30 * time.Second}
	}

	client := &http.Client{Timeout: config.Timeout}
	if config.Transport != nil {
		client.Transport = config.Transport
	}
	if limit := config.MaxRedirects; limit > 0 {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= limit {
				return fmt.Errorf("stopped after %d redirects", limit)
			}
			return nil
		}
	}
	return client
}
