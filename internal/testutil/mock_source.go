package testutil

import (
	"context"

	"3tcapital/ms_service_documents/internal/core/document"
)

// MockRecordSource is a mock implementation of document.RecordSource for testing.
type MockRecordSource struct {
	FetchRecordFunc func(ctx context.Context, kind document.Kind, id string) (map[string]any, error)
	FetchItemsFunc  func(ctx context.Context, kind document.Kind, id string) ([]any, error)
}

// FetchRecord calls the mock function if set, otherwise returns ErrRecordNotFound.
func (m *MockRecordSource) FetchRecord(ctx context.Context, kind document.Kind, id string) (map[string]any, error) {
	if m.FetchRecordFunc != nil {
		return m.FetchRecordFunc(ctx, kind, id)
	}
	return nil, document.ErrRecordNotFound
}

// FetchItems calls the mock function if set, otherwise returns an empty slice.
func (m *MockRecordSource) FetchItems(ctx context.Context, kind document.Kind, id string) ([]any, error) {
	if m.FetchItemsFunc != nil {
		return m.FetchItemsFunc(ctx, kind, id)
	}
	return []any{}, nil
}

// MockAssetProvider is a mock implementation of document.AssetProvider for testing.
type MockAssetProvider struct {
	LogoFunc   func(ctx context.Context) (*document.Image, error)
	QRCodeFunc func(ctx context.Context, kind document.Kind, id string) (*document.Image, error)
}

// Logo calls the mock function if set, otherwise returns nil image and error.
func (m *MockAssetProvider) Logo(ctx context.Context) (*document.Image, error) {
	if m.LogoFunc != nil {
		return m.LogoFunc(ctx)
	}
	return nil, nil
}

// QRCode calls the mock function if set, otherwise returns nil image and error.
func (m *MockAssetProvider) QRCode(ctx context.Context, kind document.Kind, id string) (*document.Image, error) {
	if m.QRCodeFunc != nil {
		return m.QRCodeFunc(ctx, kind, id)
	}
	return nil, nil
}
