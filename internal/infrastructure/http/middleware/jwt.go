package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"3tcapital/ms_service_documents/internal/infrastructure/config"
	httperrors "3tcapital/ms_service_documents/internal/infrastructure/http"
)

type tokenKey struct{}

// TokenFromContext returns the verified token of an authenticated request.
func TokenFromContext(ctx context.Context) (*jwt.Token, bool) {
	token, ok := ctx.Value(tokenKey{}).(*jwt.Token)
	return token, ok
}

// Subject returns the "sub" claim of the verified token, or "".
func Subject(ctx context.Context) string {
	token, ok := TokenFromContext(ctx)
	if !ok {
		return ""
	}
	sub, _ := token.Claims.GetSubject()
	return sub
}

var validMethods = []string{
	jwt.SigningMethodRS256.Alg(),
	jwt.SigningMethodRS384.Alg(),
	jwt.SigningMethodRS512.Alg(),
	jwt.SigningMethodPS256.Alg(),
	jwt.SigningMethodES256.Alg(),
}

// JWTAuthenticator validates bearer tokens against a remote JWKS.
type JWTAuthenticator struct {
	cfg     config.AuthSettings
	log     *slog.Logger
	keyfunc jwt.Keyfunc
	cancel  context.CancelFunc
	bypass  []string
}

// NewJWTAuthenticator loads the JWKS when auth is enabled. A disabled
// authenticator passes every request through.
func NewJWTAuthenticator(cfg config.AuthSettings, log *slog.Logger) (*JWTAuthenticator, error) {
	if !cfg.Enabled {
		return newAuthenticator(cfg, log, nil), nil
	}

	u, err := url.Parse(cfg.JWKSetURI)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("invalid JWKS url %q", cfg.JWKSetURI)
	}

	// Background refresh of the key set lives until Close
	ctx, cancel := context.WithCancel(context.Background())
	override := keyfunc.Override{
		RefreshInterval: 6 * time.Hour,
		RefreshErrorHandlerFunc: func(url string) func(context.Context, error) {
			return func(_ context.Context, err error) {
				log.Error("failed to refresh JWKS", "url", url, "error", err)
			}
		},
		HTTPTimeout: 10 * time.Second,
	}

	jwks, err := keyfunc.NewDefaultOverrideCtx(ctx, []string{cfg.JWKSetURI}, override)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("unable to load JWKS: %w", err)
	}

	auth := newAuthenticator(cfg, log, jwks.Keyfunc)
	auth.cancel = cancel
	return auth, nil
}

func newAuthenticator(cfg config.AuthSettings, log *slog.Logger, kf jwt.Keyfunc) *JWTAuthenticator {
	auth := &JWTAuthenticator{cfg: cfg, log: log, keyfunc: kf}
	for _, path := range cfg.BypassPaths {
		if path = strings.TrimSpace(path); path != "" {
			auth.bypass = append(auth.bypass, path)
		}
	}
	return auth
}

// Middleware rejects requests without a valid bearer token.
func (a *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	if !a.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.shouldBypass(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		// Extract token from Authorization header
		tokenString, err := extractBearerToken(r.Header.Get("Authorization"))
		if err != nil {
			httperrors.WriteError(w, http.StatusUnauthorized, "Error de Autenticación", []string{"Credenciales de acceso no válidas"}, a.log)
			return
		}

		// Validate signature, issuer and expiry
		token, err := jwt.Parse(tokenString, a.keyfunc,
			jwt.WithIssuer(a.cfg.IssuerURI),
			jwt.WithLeeway(a.cfg.ClockSkew),
			jwt.WithValidMethods(validMethods),
		)
		if err != nil || !token.Valid {
			a.log.Warn("token validation failed", "path", r.URL.Path, "error", err)
			httperrors.WriteError(w, http.StatusUnauthorized, "Error de Autenticación", []string{"Token inválido o expirado"}, a.log)
			return
		}

		// Store token in context for downstream handlers
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey{}, token)))
	})
}

// Close stops the background JWKS refresher.
func (a *JWTAuthenticator) Close() {
	if a.cancel != nil {
		a.cancel()
	}
}

// shouldBypass matches a configured path exactly or as a parent segment,
// so "/health" also covers "/health/ready".
func (a *JWTAuthenticator) shouldBypass(path string) bool {
	for _, p := range a.bypass {
		if path == p || strings.HasPrefix(path, strings.TrimSuffix(p, "/")+"/") {
			return true
		}
	}
	return false
}

func extractBearerToken(header string) (string, error) {
	if header == "" {
		return "", errors.New("missing Authorization header")
	}

	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid Authorization header format")
	}
	return parts[1], nil
}
