// Package memory keeps the generation history in process when no database
// is configured. Entries are lost on restart.
package memory

import (
	"context"
	"sync"

	"3tcapital/ms_service_documents/internal/core/audit"
)

// DefaultCapacity bounds the history when NewRepository gets a
// non-positive capacity.
const DefaultCapacity = 500

var _ audit.GenerationRepository = (*Repository)(nil)

// Repository is a fixed-size ring of generation logs.
type Repository struct {
	mu    sync.RWMutex
	ring  []audit.GenerationLog
	next  int
	count int
}

// NewRepository creates a ring holding at most capacity entries.
func NewRepository(capacity int) *Repository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Repository{ring: make([]audit.GenerationLog, capacity)}
}

// SaveGeneration stores the entry, evicting the oldest one when full.
func (r *Repository) SaveGeneration(ctx context.Context, log audit.GenerationLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Locations = append([]string(nil), log.Locations...)

	r.mu.Lock()
	r.ring[r.next] = log
	r.next = (r.next + 1) % len(r.ring)
	if r.count < len(r.ring) {
		r.count++
	}
	r.mu.Unlock()
	return nil
}

// RecentGenerations returns up to limit entries, newest first.
func (r *Repository) RecentGenerations(ctx context.Context, limit int) ([]audit.GenerationLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > r.count {
		limit = r.count
	}
	out := make([]audit.GenerationLog, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (r.next - i + len(r.ring)) % len(r.ring)
		out = append(out, r.ring[idx])
	}
	return out, nil
}

// Len reports how many entries are held.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.count
}
