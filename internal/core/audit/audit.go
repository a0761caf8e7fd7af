package audit

import (
	"context"
	"encoding/json"
	"time"
)

// ProviderAuditLog is the trace of one outbound call to the records backend
// or an asset host.
type ProviderAuditLog struct {
	ID              int64
	CorrelationID   string
	Provider        string
	Operation       string
	RequestMethod   string
	RequestURL      string
	RequestHeaders  map[string]string
	RequestBody     json.RawMessage
	ResponseStatus  *int
	ResponseHeaders map[string]string
	ResponseBody    json.RawMessage
	DurationMs      int64
	ErrorMessage    string
	CreatedAt       time.Time
}

// Generation statuses.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// GenerationLog records one document export, successful or not.
type GenerationLog struct {
	ID             string    `json:"id"`
	CorrelationID  string    `json:"correlationId,omitempty"`
	Kind           string    `json:"kind"`
	DocumentID     string    `json:"documentId,omitempty"`
	DocumentNumber string    `json:"documentNumber"`
	FileName       string    `json:"fileName,omitempty"`
	Pages          int       `json:"pages"`
	ItemCount      int       `json:"itemCount"`
	GrandTotal     string    `json:"grandTotal"`
	SizeBytes      int       `json:"sizeBytes"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"errorMessage,omitempty"`
	Locations      []string  `json:"locations,omitempty"`
	DurationMs     int64     `json:"durationMs"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Repository persists outbound call traces.
type Repository interface {
	Save(ctx context.Context, log ProviderAuditLog) error

	// FindByCorrelationID returns every trace sharing a correlation id.
	FindByCorrelationID(ctx context.Context, correlationID string) ([]ProviderAuditLog, error)
}

// GenerationRepository persists the export history.
type GenerationRepository interface {
	SaveGeneration(ctx context.Context, log GenerationLog) error
	RecentGenerations(ctx context.Context, limit int) ([]GenerationLog, error)
}
