package context

import (
	"context"
	"strings"
)

// HeaderName carries the correlation id between services.
const HeaderName = "X-Correlation-ID"

const maxCorrelationIDLength = 64

type contextKey string

// CorrelationIDKey is the context key for correlation IDs.
const CorrelationIDKey contextKey = "correlation_id"

// WithCorrelationID stores the id that ties an inbound request to the
// backend calls, audit rows and generation log entries it produces.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// GetCorrelationID returns the stored id or "".
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}

// Resolve prefers a well formed inbound id over the locally generated one.
func Resolve(inbound, fallback string) string {
	inbound = strings.TrimSpace(inbound)
	if inbound == "" || len(inbound) > maxCorrelationIDLength {
		return fallback
	}
	for _, r := range inbound {
		if r < 0x21 || r > 0x7e {
			return fallback
		}
	}
	return inbound
}
