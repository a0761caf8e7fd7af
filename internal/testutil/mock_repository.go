package testutil

import (
	"context"
	"sync"

	"3tcapital/ms_service_documents/internal/core/audit"
	"3tcapital/ms_service_documents/internal/core/document"
)

// MockSink is a mock implementation of document.Sink for testing.
type MockSink struct {
	NameValue string
	StoreFunc  func(ctx context.Context, file document.File) (string, error)
	RemoveFunc func(ctx context.Context, location string) error

	mu      sync.Mutex
	Stored  []document.File
	Removed []string
}

// Name returns NameValue, or "mock".
func (m *MockSink) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

// Store records the file and calls the mock function if set.
func (m *MockSink) Store(ctx context.Context, file document.File) (string, error) {
	m.mu.Lock()
	m.Stored = append(m.Stored, file)
	m.mu.Unlock()

	if m.StoreFunc != nil {
		return m.StoreFunc(ctx, file)
	}
	return "mock://" + file.Name, nil
}

// Remove records the location and calls the mock function if set.
func (m *MockSink) Remove(ctx context.Context, location string) error {
	m.mu.Lock()
	m.Removed = append(m.Removed, location)
	m.mu.Unlock()

	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, location)
	}
	return nil
}

// MockGenerationRepository keeps generation logs in memory.
type MockGenerationRepository struct {
	SaveGenerationFunc    func(ctx context.Context, log audit.GenerationLog) error
	RecentGenerationsFunc func(ctx context.Context, limit int) ([]audit.GenerationLog, error)

	mu   sync.Mutex
	Logs []audit.GenerationLog
}

// SaveGeneration stores the log and calls the mock function if set.
func (m *MockGenerationRepository) SaveGeneration(ctx context.Context, log audit.GenerationLog) error {
	m.mu.Lock()
	m.Logs = append(m.Logs, log)
	m.mu.Unlock()

	if m.SaveGenerationFunc != nil {
		return m.SaveGenerationFunc(ctx, log)
	}
	return nil
}

// RecentGenerations calls the mock function if set, otherwise returns the
// stored logs, newest first.
func (m *MockGenerationRepository) RecentGenerations(ctx context.Context, limit int) ([]audit.GenerationLog, error) {
	if m.RecentGenerationsFunc != nil {
		return m.RecentGenerationsFunc(ctx, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.GenerationLog, 0, limit)
	for i := len(m.Logs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.Logs[i])
	}
	return out, nil
}

// Snapshot returns a copy of the stored logs.
func (m *MockGenerationRepository) Snapshot() []audit.GenerationLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]audit.GenerationLog(nil), m.Logs...)
}
