package postgres

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"3tcapital/ms_service_documents/internal/core/audit"
	"3tcapital/ms_service_documents/internal/infrastructure/database"
	"3tcapital/ms_service_documents/internal/testutil"
)

func TestEncodeHeaders(t *testing.T) {
	b, err := encodeHeaders(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(b) != "{}" {
		t.Errorf("expected empty object for nil headers, got %s", b)
	}

	h, err := decodeHeaders([]byte(`{"Content-Type":"application/json"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h["Content-Type"] != "application/json" {
		t.Errorf("headers not decoded: %v", h)
	}

	if h, err := decodeHeaders(nil); err != nil || h != nil {
		t.Errorf("expected nil headers for NULL column, got %v, %v", h, err)
	}
}

func TestNullableJSON(t *testing.T) {
	if v := nullableJSON(nil); v != nil {
		t.Errorf("expected nil for empty body, got %v", v)
	}
	v := nullableJSON(json.RawMessage(`{"id":"q-1"}`))
	if b, ok := v.([]byte); !ok || string(b) != `{"id":"q-1"}` {
		t.Errorf("expected raw bytes, got %#v", v)
	}
}

func TestHistoryLimit(t *testing.T) {
	tests := map[int]int{0: 50, -3: 50, 10: 10, 200: 200, 201: 50}
	for in, want := range tests {
		if got := historyLimit(in); got != want {
			t.Errorf("historyLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

// TestRepository_Postgres runs against a real database when
// TEST_DATABASE_URL is set.
func TestRepository_Postgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := testutil.NewTestLogger()
	pool, err := database.NewPoolFromURL(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()
	if err := database.RunMigrations(ctx, pool, log); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := NewRepository(pool, log)
	correlationID := uuid.NewString()

	status := 200
	err = repo.Save(ctx, audit.ProviderAuditLog{
		CorrelationID:  correlationID,
		Provider:       "records",
		Operation:      "fetch_record",
		RequestMethod:  "GET",
		RequestURL:     "https://records.example.com/quotations/q-1",
		RequestHeaders: map[string]string{"Accept": "application/json"},
		ResponseStatus: &status,
		ResponseBody:   json.RawMessage(`{"id":"q-1"}`),
		DurationMs:     12,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	logs, err := repo.FindByCorrelationID(ctx, correlationID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(logs) != 1 || logs[0].Operation != "fetch_record" || *logs[0].ResponseStatus != 200 {
		t.Fatalf("unexpected audit logs: %+v", logs)
	}

	entry := audit.GenerationLog{
		ID:             uuid.NewString(),
		CorrelationID:  correlationID,
		Kind:           "invoice",
		DocumentID:     "inv-9",
		DocumentNumber: "INV-9",
		FileName:       "invoice_INV-9_2024-07-15.pdf",
		Pages:          2,
		ItemCount:      31,
		GrandTotal:     "3841.00",
		SizeBytes:      20480,
		Status:         audit.StatusSucceeded,
		Locations:      []string{"/srv/archive/invoice_INV-9_2024-07-15.pdf"},
		DurationMs:     140,
		CreatedAt:      time.Now().UTC(),
	}
	if err := repo.SaveGeneration(ctx, entry); err != nil {
		t.Fatalf("save generation: %v", err)
	}

	recent, err := repo.RecentGenerations(ctx, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	found := false
	for _, g := range recent {
		if g.ID == entry.ID {
			found = true
			if g.GrandTotal != "3841.00" || len(g.Locations) != 1 {
				t.Errorf("unexpected stored entry: %+v", g)
			}
		}
	}
	if !found {
		t.Error("saved generation not listed")
	}
}
