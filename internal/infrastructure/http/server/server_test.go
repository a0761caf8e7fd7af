package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"3tcapital/ms_service_documents/internal/infrastructure/config"
	ctxutil "3tcapital/ms_service_documents/internal/infrastructure/context"
	"3tcapital/ms_service_documents/internal/testutil"
)

func testConfig() config.AppConfig {
	return config.AppConfig{
		HTTP: config.HTTPSettings{
			Port:            8080,
			ShutdownTimeout: time.Second,
			RequestTimeout:  5 * time.Second,
		},
		Auth: config.AuthSettings{Enabled: false},
	}
}

var okHealth = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("healthy"))
})

func TestNew_RequiredOptions(t *testing.T) {
	if _, err := New(Options{Config: testConfig(), HealthHandler: okHealth}); err == nil || err.Error() != "logger is required" {
		t.Errorf("expected 'logger is required', got %v", err)
	}
	if _, err := New(Options{Config: testConfig(), Logger: testutil.NewNullLogger()}); err == nil || err.Error() != "health handler is required" {
		t.Errorf("expected 'health handler is required', got %v", err)
	}
}

func TestNew_InvalidAuthConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthSettings{Enabled: true, IssuerURI: "https://issuer.example.com", JWKSetURI: "not a url"}

	if _, err := New(Options{Config: cfg, Logger: testutil.NewNullLogger(), HealthHandler: okHealth}); err == nil {
		t.Fatal("expected error for invalid JWKS url")
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	server, err := New(Options{Config: testConfig(), Logger: testutil.NewNullLogger(), HealthHandler: okHealth})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if server.httpServer.Addr != ":8080" {
		t.Errorf("expected address ':8080', got %q", server.httpServer.Addr)
	}

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK || w.Body.String() != "healthy" {
		t.Errorf("unexpected health answer %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get(ctxutil.HeaderName) == "" {
		t.Error("expected correlation id header on responses")
	}
}

func TestServer_DocumentRoutes(t *testing.T) {
	var (
		correlationID string
		hasDeadline   bool
	)
	routes := func(r chi.Router) {
		r.Get("/{kind}/{id}/pdf", func(w http.ResponseWriter, r *http.Request) {
			correlationID = ctxutil.GetCorrelationID(r.Context())
			_, hasDeadline = r.Context().Deadline()
			w.Write([]byte(chi.URLParam(r, "kind") + "/" + chi.URLParam(r, "id")))
		})
	}

	server, err := New(Options{Config: testConfig(), Logger: testutil.NewNullLogger(), HealthHandler: okHealth, DocumentRoutes: routes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/invoice/inv-3/pdf", nil)
	req.Header.Set(ctxutil.HeaderName, "upstream-42")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "invoice/inv-3" {
		t.Fatalf("unexpected answer %d %q", w.Code, w.Body.String())
	}
	if correlationID != "upstream-42" {
		t.Errorf("expected inbound correlation id, got %q", correlationID)
	}
	if !hasDeadline {
		t.Error("expected API requests to carry a deadline")
	}
}

func TestServer_WithoutDocumentRoutes(t *testing.T) {
	server, err := New(Options{Config: testConfig(), Logger: testutil.NewNullLogger(), HealthHandler: okHealth})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/quotation/q-1/pdf", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestServer_NotFound(t *testing.T) {
	server, err := New(Options{Config: testConfig(), Logger: testutil.NewNullLogger(), HealthHandler: okHealth})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	body := testutil.ReadErrorResponse(t, w)
	if body["message"] != "Recurso no encontrado" {
		t.Errorf("unexpected message %v", body["message"])
	}
}

func TestServer_RecoversPanics(t *testing.T) {
	routes := func(r chi.Router) {
		r.Get("/history", func(http.ResponseWriter, *http.Request) { panic("boom") })
	}
	server, err := New(Options{Config: testConfig(), Logger: testutil.NewNullLogger(), HealthHandler: okHealth, DocumentRoutes: routes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/history", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}

func TestServer_ServeAndShutdown(t *testing.T) {
	server, err := New(Options{Config: testConfig(), Logger: testutil.NewNullLogger(), HealthHandler: okHealth})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer server.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected shutdown error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunCancelledContext(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.Port = 0
	server, err := New(Options{Config: cfg, Logger: testutil.NewNullLogger(), HealthHandler: okHealth})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := server.Run(ctx); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
