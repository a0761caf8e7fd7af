package health

import (
	"context"
	"errors"
	"testing"
	"time"

	corehealth "3tcapital/ms_service_documents/internal/core/health"
)

var testMeta = Metadata{
	Service:     "test-service",
	Version:     "1.0.0",
	Environment: "test",
}

func TestService_Status(t *testing.T) {
	service := NewService(testMeta)
	time.Sleep(10 * time.Millisecond)

	status := service.Status(context.Background())

	if status.Service != testMeta.Service || status.Version != testMeta.Version || status.Environment != testMeta.Environment {
		t.Errorf("unexpected metadata in %+v", status)
	}
	if status.Status != corehealth.StatusUp {
		t.Errorf("expected status UP, got %q", status.Status)
	}
	if !status.StartedAt.Equal(service.startedAt) {
		t.Error("expected startedAt to match service start")
	}
	if len(status.Dependencies) != 0 {
		t.Errorf("expected no dependencies, got %v", status.Dependencies)
	}
}

func TestService_StatusWithChecks(t *testing.T) {
	var deadline bool
	service := NewService(testMeta,
		Check{Name: "postgres", Ping: func(ctx context.Context) error {
			_, deadline = ctx.Deadline()
			return nil
		}},
		Check{Name: "backend", Ping: func(ctx context.Context) error {
			return errors.New("circuit open")
		}},
	)

	status := service.Status(context.Background())

	if !deadline {
		t.Error("expected checks to run with a deadline")
	}
	if status.Status != corehealth.StatusDegraded {
		t.Errorf("expected DEGRADED, got %q", status.Status)
	}
	if len(status.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(status.Dependencies))
	}
	if status.Dependencies[0].Status != corehealth.StatusUp {
		t.Errorf("expected postgres UP, got %+v", status.Dependencies[0])
	}
	if d := status.Dependencies[1]; d.Status != corehealth.StatusDegraded || d.Error != "circuit open" {
		t.Errorf("unexpected backend dependency %+v", d)
	}
}
