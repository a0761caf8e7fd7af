package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"3tcapital/ms_service_documents/internal/core/audit"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Repository stores outbound call traces and the document generation
// history in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

var (
	_ audit.Repository           = (*Repository)(nil)
	_ audit.GenerationRepository = (*Repository)(nil)
)

// NewRepository creates a repository. log may be nil.
func NewRepository(pool *pgxpool.Pool, log *slog.Logger) *Repository {
	return &Repository{pool: pool, log: log}
}

// Save persists one provider call trace.
func (r *Repository) Save(ctx context.Context, entry audit.ProviderAuditLog) error {
	const query = `
		INSERT INTO provider_audit_log (
			correlation_id, provider, operation, request_method, request_url,
			request_headers, request_body, response_status, response_headers,
			response_body, duration_ms, error_message
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	requestHeaders, err := encodeHeaders(entry.RequestHeaders)
	if err != nil {
		return r.fail("marshal request headers", err, entry)
	}
	responseHeaders, err := encodeHeaders(entry.ResponseHeaders)
	if err != nil {
		return r.fail("marshal response headers", err, entry)
	}

	_, err = r.pool.Exec(ctx, query,
		entry.CorrelationID,
		entry.Provider,
		entry.Operation,
		entry.RequestMethod,
		entry.RequestURL,
		requestHeaders,
		nullableJSON(entry.RequestBody),
		entry.ResponseStatus,
		responseHeaders,
		nullableJSON(entry.ResponseBody),
		entry.DurationMs,
		entry.ErrorMessage,
	)
	if err != nil {
		return r.fail("insert audit log", err, entry)
	}

	if r.log != nil {
		r.log.Debug("Audit log saved",
			"correlation_id", entry.CorrelationID,
			"provider", entry.Provider,
			"operation", entry.Operation,
			"response_status", entry.ResponseStatus,
			"duration_ms", entry.DurationMs,
		)
	}
	return nil
}

func (r *Repository) fail(step string, err error, entry audit.ProviderAuditLog) error {
	wrapped := fmt.Errorf("%s: %w", step, err)
	if r.log != nil {
		r.log.Error("Failed to save audit log",
			"correlation_id", entry.CorrelationID,
			"provider", entry.Provider,
			"operation", entry.Operation,
			"url", entry.RequestURL,
			"error", wrapped,
		)
	}
	return wrapped
}

// FindByCorrelationID returns every trace sharing a correlation id, newest first.
func (r *Repository) FindByCorrelationID(ctx context.Context, correlationID string) ([]audit.ProviderAuditLog, error) {
	const query = `
		SELECT id, correlation_id, provider, operation, request_method, request_url,
		       request_headers, request_body, response_status, response_headers,
		       response_body, duration_ms, error_message, created_at
		FROM provider_audit_log
		WHERE correlation_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, correlationID)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []audit.ProviderAuditLog
	for rows.Next() {
		var (
			entry                           audit.ProviderAuditLog
			requestHeaders, responseHeaders []byte
			requestBody, responseBody       []byte
		)
		err := rows.Scan(
			&entry.ID,
			&entry.CorrelationID,
			&entry.Provider,
			&entry.Operation,
			&entry.RequestMethod,
			&entry.RequestURL,
			&requestHeaders,
			&requestBody,
			&entry.ResponseStatus,
			&responseHeaders,
			&responseBody,
			&entry.DurationMs,
			&entry.ErrorMessage,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}

		if entry.RequestHeaders, err = decodeHeaders(requestHeaders); err != nil {
			return nil, fmt.Errorf("unmarshal request headers: %w", err)
		}
		if entry.ResponseHeaders, err = decodeHeaders(responseHeaders); err != nil {
			return nil, fmt.Errorf("unmarshal response headers: %w", err)
		}
		entry.RequestBody = requestBody
		entry.ResponseBody = responseBody

		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return logs, nil
}

// SaveGeneration appends one entry to the generation history.
func (r *Repository) SaveGeneration(ctx context.Context, entry audit.GenerationLog) error {
	const query = `
		INSERT INTO generation_log (
			id, correlation_id, kind, document_id, document_number, file_name,
			pages, item_count, grand_total, size_bytes, status, error_message,
			locations, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	locations := entry.Locations
	if locations == nil {
		locations = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.CorrelationID,
		entry.Kind,
		entry.DocumentID,
		entry.DocumentNumber,
		entry.FileName,
		entry.Pages,
		entry.ItemCount,
		entry.GrandTotal,
		entry.SizeBytes,
		entry.Status,
		entry.ErrorMessage,
		locations,
		entry.DurationMs,
		entry.CreatedAt,
	)
	if err != nil {
		if r.log != nil {
			r.log.Error("Failed to save generation log",
				"correlation_id", entry.CorrelationID,
				"kind", entry.Kind,
				"document_number", entry.DocumentNumber,
				"error", err,
			)
		}
		return fmt.Errorf("insert generation log: %w", err)
	}
	return nil
}

// RecentGenerations lists the newest history entries.
func (r *Repository) RecentGenerations(ctx context.Context, limit int) ([]audit.GenerationLog, error) {
	const query = `
		SELECT id, correlation_id, kind, document_id, document_number, file_name,
		       pages, item_count, grand_total, size_bytes, status, error_message,
		       locations, duration_ms, created_at
		FROM generation_log
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, historyLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query generation logs: %w", err)
	}
	defer rows.Close()

	logs := []audit.GenerationLog{}
	for rows.Next() {
		var entry audit.GenerationLog
		err := rows.Scan(
			&entry.ID,
			&entry.CorrelationID,
			&entry.Kind,
			&entry.DocumentID,
			&entry.DocumentNumber,
			&entry.FileName,
			&entry.Pages,
			&entry.ItemCount,
			&entry.GrandTotal,
			&entry.SizeBytes,
			&entry.Status,
			&entry.ErrorMessage,
			&entry.Locations,
			&entry.DurationMs,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan generation log: %w", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return logs, nil
}

func historyLimit(limit int) int {
	if limit <= 0 || limit > maxHistoryLimit {
		return defaultHistoryLimit
	}
	return limit
}

func encodeHeaders(h map[string]string) ([]byte, error) {
	if h == nil {
		h = map[string]string{}
	}
	return json.Marshal(h)
}

func decodeHeaders(b []byte) (map[string]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var h map[string]string
	if err := json.Unmarshal(b, &h); err != nil {
		return nil, err
	}
	return h, nil
}

// nullableJSON keeps empty bodies as SQL NULL instead of invalid jsonb.
func nullableJSON(b json.RawMessage) any {
	if len(b) == 0 {
		return nil
	}
	return []byte(b)
}
