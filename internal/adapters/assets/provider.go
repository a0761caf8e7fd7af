package assets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/disintegration/imaging"

	"3tcapital/ms_service_documents/internal/core/document"
	"3tcapital/ms_service_documents/internal/infrastructure/cache"
	httpclient "3tcapital/ms_service_documents/internal/infrastructure/http"
)

var (
	// ErrNoLogo is returned when neither a logo URL nor a path is configured.
	ErrNoLogo = errors.New("no logo configured")
	// ErrNoVerifyURL is returned when the verification base URL is missing.
	ErrNoVerifyURL = errors.New("verification base URL not configured")
)

const (
	logoKey       = "logo"
	maxLogoBytes  = 5 << 20
	defaultQRSize = 256
	qrQuietZone   = 16
	logoMaxWidth  = 600
	logoMaxHeight = 240
)

// Doer executes HTTP requests.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures the asset provider.
type Config struct {
	LogoURL       string
	LogoPath      string
	VerifyBaseURL string
	QRSize        int
}

// Provider loads the branding logo and draws verification QR codes. It
// implements document.AssetProvider. Prepared images are cached.
type Provider struct {
	cfg   Config
	http  Doer
	cache *cache.AssetCache
	log   *slog.Logger
}

// NewProvider creates an asset provider. doer may be nil when the logo is
// read from disk.
func NewProvider(cfg Config, doer Doer, c *cache.AssetCache, log *slog.Logger) *Provider {
	if cfg.QRSize <= 0 {
		cfg.QRSize = defaultQRSize
	}
	cfg.VerifyBaseURL = strings.TrimRight(cfg.VerifyBaseURL, "/")
	return &Provider{cfg: cfg, http: doer, cache: c, log: log}
}

// Logo returns the logo fitted into the header box and re-encoded as PNG.
func (p *Provider) Logo(ctx context.Context) (*document.Image, error) {
	if img, ok := p.cache.Get(logoKey); ok {
		return img, nil
	}

	raw, err := p.loadLogo(ctx)
	if err != nil {
		return nil, err
	}

	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}

	fitted := imaging.Fit(src, logoMaxWidth, logoMaxHeight, imaging.Lanczos)
	// Flatten transparency onto white.
	canvas := imaging.New(fitted.Bounds().Dx(), fitted.Bounds().Dy(), color.White)
	canvas = imaging.Overlay(canvas, fitted, image.Pt(0, 0), 1.0)

	img, err := encodePNG(canvas)
	if err != nil {
		return nil, fmt.Errorf("encode logo: %w", err)
	}
	p.cache.Set(logoKey, img)
	return img, nil
}

func (p *Provider) loadLogo(ctx context.Context) ([]byte, error) {
	switch {
	case p.cfg.LogoURL != "" && p.http != nil:
		return p.fetch(ctx, p.cfg.LogoURL)
	case p.cfg.LogoPath != "":
		b, err := os.ReadFile(p.cfg.LogoPath)
		if err != nil {
			return nil, fmt.Errorf("read logo file: %w", err)
		}
		return b, nil
	default:
		return nil, ErrNoLogo
	}
}

func (p *Provider) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(httpclient.WithOperation(ctx, "fetch_logo"), http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build logo request: %w", err)
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch logo: unexpected status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	if len(b) > maxLogoBytes {
		return nil, fmt.Errorf("logo larger than %d bytes", maxLogoBytes)
	}
	return b, nil
}

// QRCode draws a QR code for the document's verification URL with a white
// quiet zone around it.
func (p *Provider) QRCode(ctx context.Context, kind document.Kind, id string) (*document.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := p.VerifyURL(kind, id)
	if err != nil {
		return nil, err
	}
	if img, ok := p.cache.Get(target); ok {
		return img, nil
	}

	code, err := qr.Encode(target, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	code, err = barcode.Scale(code, p.cfg.QRSize, p.cfg.QRSize)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}

	side := p.cfg.QRSize + 2*qrQuietZone
	padded := imaging.PasteCenter(imaging.New(side, side, color.White), code)

	img, err := encodePNG(padded)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	p.cache.Set(target, img)
	return img, nil
}

// VerifyURL is {base}/verify-quotation/{id} or {base}/verify-invoice/{id}.
func (p *Provider) VerifyURL(kind document.Kind, id string) (string, error) {
	if p.cfg.VerifyBaseURL == "" {
		return "", ErrNoVerifyURL
	}
	if id == "" || id == document.NotAvailable {
		return "", fmt.Errorf("no id to verify for %s", kind)
	}
	return p.cfg.VerifyBaseURL + "/verify-" + string(kind) + "/" + url.PathEscape(id), nil
}

func encodePNG(img image.Image) (*document.Image, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return &document.Image{Bytes: buf.Bytes(), Extension: "png"}, nil
}
