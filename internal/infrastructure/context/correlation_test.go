package context

import (
	"context"
	"strings"
	"testing"
)

func TestWithCorrelationID(t *testing.T) {
	tests := []struct {
		name          string
		correlationID string
	}{
		{
			name:          "adds correlation ID to context",
			correlationID: "test-correlation-123",
		},
		{
			name:          "handles empty correlation ID",
			correlationID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ctx = WithCorrelationID(ctx, tt.correlationID)

			result := GetCorrelationID(ctx)
			if result != tt.correlationID {
				t.Errorf("expected %s, got %s", tt.correlationID, result)
			}
		})
	}
}

func TestGetCorrelationID(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected string
	}{
		{
			name:     "returns correlation ID when present",
			ctx:      WithCorrelationID(context.Background(), "test-123"),
			expected: "test-123",
		},
		{
			name:     "returns empty string when not present",
			ctx:      context.Background(),
			expected: "",
		},
		{
			name:     "returns empty string for nil context value",
			ctx:      context.WithValue(context.Background(), CorrelationIDKey, nil),
			expected: "",
		},
		{
			name:     "returns empty string for wrong type",
			ctx:      context.WithValue(context.Background(), CorrelationIDKey, 123),
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetCorrelationID(tt.ctx)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

func TestCorrelationIDSurvivesDetachedContexts(t *testing.T) {
	ctx, cancel := context.WithCancel(WithCorrelationID(context.Background(), "original-id"))
	cancel()

	// History writes run on a context detached from the cancelled request.
	detached := context.WithoutCancel(ctx)
	if GetCorrelationID(detached) != "original-id" {
		t.Error("correlation ID should survive context.WithoutCancel")
	}
	if detached.Err() != nil {
		t.Error("detached context should not be cancelled")
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		inbound  string
		fallback string
		expected string
	}{
		{name: "inbound wins", inbound: "abc-123", fallback: "req-1", expected: "abc-123"},
		{name: "trimmed", inbound: "  abc-123 ", fallback: "req-1", expected: "abc-123"},
		{name: "empty inbound", inbound: "", fallback: "req-1", expected: "req-1"},
		{name: "spaces inside", inbound: "abc 123", fallback: "req-1", expected: "req-1"},
		{name: "control characters", inbound: "abc\n123", fallback: "req-1", expected: "req-1"},
		{name: "too long", inbound: strings.Repeat("a", 65), fallback: "req-1", expected: "req-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.inbound, tt.fallback); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
