package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"3tcapital/ms_service_documents/internal/core/document"
	"3tcapital/ms_service_documents/internal/infrastructure/cache"
	"3tcapital/ms_service_documents/internal/testutil"
)

func logoPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 22, G: 163, B: 74, A: 128})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func decodeSize(t *testing.T, img *document.Image) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Bytes))
	if err != nil {
		t.Fatalf("invalid image: %v", err)
	}
	if format != "png" || img.Extension != "png" {
		t.Errorf("expected png, got %s / %s", format, img.Extension)
	}
	return cfg.Width, cfg.Height
}

func TestLogo_FromURLIsFittedAndCached(t *testing.T) {
	var hits atomic.Int32
	body := logoPNG(t, 1200, 300)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	defer server.Close()

	p := NewProvider(Config{LogoURL: server.URL + "/logo.png"}, server.Client(), cache.NewAssetCache(time.Minute), testutil.NewNullLogger())

	img, err := p.Logo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w, h := decodeSize(t, img); w != 600 || h != 150 {
		t.Errorf("expected logo fitted to 600x150, got %dx%d", w, h)
	}

	if _, err := p.Logo(context.Background()); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected cached logo on second call, got %d fetches", hits.Load())
	}
}

func TestLogo_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	if err := os.WriteFile(path, logoPNG(t, 100, 40), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewProvider(Config{LogoPath: path}, nil, cache.NewAssetCache(time.Minute), testutil.NewNullLogger())
	img, err := p.Logo(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w, h := decodeSize(t, img); w != 100 || h != 40 {
		t.Errorf("expected small logo untouched, got %dx%d", w, h)
	}
}

func TestLogo_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("not an image"))
	}))
	defer server.Close()

	tests := []struct {
		name string
		cfg  Config
	}{
		{"nothing configured", Config{}},
		{"http error", Config{LogoURL: server.URL + "/missing.png"}},
		{"undecodable", Config{LogoURL: server.URL + "/broken.png"}},
		{"missing file", Config{LogoPath: filepath.Join(t.TempDir(), "nope.png")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProvider(tt.cfg, server.Client(), cache.NewAssetCache(time.Minute), testutil.NewNullLogger())
			if img, err := p.Logo(context.Background()); err == nil || img != nil {
				t.Errorf("expected failure, got %v %v", img, err)
			}
		})
	}

	p := NewProvider(Config{}, nil, cache.NewAssetCache(time.Minute), testutil.NewNullLogger())
	if _, err := p.Logo(context.Background()); !errors.Is(err, ErrNoLogo) {
		t.Errorf("expected ErrNoLogo, got %v", err)
	}
}

func TestQRCode(t *testing.T) {
	p := NewProvider(Config{VerifyBaseURL: "https://verify.example.com/", QRSize: 200}, nil, cache.NewAssetCache(time.Minute), testutil.NewNullLogger())

	img, err := p.QRCode(context.Background(), document.KindInvoice, "inv-42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w, h := decodeSize(t, img); w != 232 || h != 232 {
		t.Errorf("expected 232x232 QR with quiet zone, got %dx%d", w, h)
	}

	again, _ := p.QRCode(context.Background(), document.KindInvoice, "inv-42")
	if again != img {
		t.Error("expected cached QR image")
	}
}

func TestVerifyURL(t *testing.T) {
	p := NewProvider(Config{VerifyBaseURL: "https://verify.example.com/"}, nil, cache.NewAssetCache(time.Minute), testutil.NewNullLogger())

	got, err := p.VerifyURL(document.KindQuotation, "q 7")
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://verify.example.com/verify-quotation/q%207" {
		t.Errorf("unexpected URL %q", got)
	}

	if _, err := p.VerifyURL(document.KindInvoice, ""); err == nil {
		t.Error("expected error for empty id")
	}

	empty := NewProvider(Config{}, nil, cache.NewAssetCache(time.Minute), testutil.NewNullLogger())
	if _, err := empty.QRCode(context.Background(), document.KindInvoice, "x"); !errors.Is(err, ErrNoVerifyURL) {
		t.Errorf("expected ErrNoVerifyURL, got %v", err)
	}
}
