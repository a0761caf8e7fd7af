package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"3tcapital/ms_service_documents/internal/core/company"
)

// AppConfig encapsulates all runtime configuration knobs.
type AppConfig struct {
	App       AppSettings
	HTTP      HTTPSettings
	Auth      AuthSettings
	Log       LogSettings
	Database  DatabaseSettings
	Audit     AuditSettings
	Backend   BackendSettings
	Assets    AssetSettings
	Rendering RenderingSettings
	Archive   ArchiveSettings
}

type AppSettings struct {
	Name        string
	Version     string
	Environment string
}

type HTTPSettings struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	// RequestTimeout bounds one generation request end to end.
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type AuthSettings struct {
	Enabled     bool
	IssuerURI   string
	JWKSetURI   string
	ClockSkew   time.Duration
	BypassPaths []string
}

type LogSettings struct {
	Level string
}

// DatabaseSettings point at the history/audit store. History is kept in
// memory when Enabled is false.
type DatabaseSettings struct {
	Enabled         bool
	Host            string
	Port            int
	Database        string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type AuditSettings struct {
	Enabled         bool
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodySize     int
}

// BackendSettings describe the records API the documents are built from.
type BackendSettings struct {
	BaseURL        string
	Token          string
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	MaxConcurrent  int
	MaxFailures    int
	Cooldown       time.Duration
}

type AssetSettings struct {
	LogoURL       string
	LogoPath      string
	VerifyBaseURL string
	QRSize        int
	CacheTTL      time.Duration
}

type RenderingSettings struct {
	CompanyProfilePath string
	KeywordFallback    bool
	BatchWorkers       int
}

// ArchiveSettings enable the optional sinks every generated file is copied to.
type ArchiveSettings struct {
	Dir                  string
	DriveFolderID        string
	DriveCredentialsFile string
}

// Load resolves the application configuration from environment variables.
// A .env file is read first when present; variables already set in the
// environment win.
func Load() (AppConfig, error) {
	_ = godotenv.Load()

	cfg := AppConfig{
		App: AppSettings{
			Name:        getEnv("APP_NAME", "ms_service_documents"),
			Version:     getEnv("APP_VERSION", "0.1.0"),
			Environment: getEnv("APP_ENV", "local"),
		},
		HTTP: HTTPSettings{
			Port:            getEnvAsInt("APP_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:     getEnvAsDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second),
			RequestTimeout:  getEnvAsDuration("HTTP_REQUEST_TIMEOUT", 45*time.Second),
			MaxBodyBytes:    int64(getEnvAsInt("HTTP_MAX_BODY_BYTES", 2<<20)),
		},
		Auth: AuthSettings{
			Enabled:     getEnvAsBool("AUTH_ENABLED", false),
			IssuerURI:   strings.TrimSpace(os.Getenv("JWT_ISSUER_URI")),
			JWKSetURI:   strings.TrimSpace(os.Getenv("JWT_JWK_SET_URI")),
			ClockSkew:   getEnvAsDuration("AUTH_CLOCK_SKEW", 2*time.Minute),
			BypassPaths: getEnvAsCSV("AUTH_BYPASS_PATHS", []string{"/health"}),
		},
		Log: LogSettings{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseSettings{
			Enabled:         getEnvAsBool("DB_ENABLED", false),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Database:        getEnv("DB_NAME", "service_documents"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			AutoMigrate:     getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Audit: AuditSettings{
			Enabled:         getEnvAsBool("AUDIT_ENABLED", true),
			LogRequestBody:  getEnvAsBool("AUDIT_LOG_REQUEST_BODY", true),
			LogResponseBody: getEnvAsBool("AUDIT_LOG_RESPONSE_BODY", true),
			MaxBodySize:     getEnvAsInt("AUDIT_MAX_BODY_SIZE", 65536),
		},
		Backend: BackendSettings{
			BaseURL:        strings.TrimRight(strings.TrimSpace(os.Getenv("BACKEND_BASE_URL")), "/"),
			Token:          strings.TrimSpace(os.Getenv("BACKEND_TOKEN")),
			Timeout:        getEnvAsDuration("BACKEND_TIMEOUT", 15*time.Second),
			RequestsPerSec: getEnvAsFloat("BACKEND_RATE_LIMIT_RPS", 20),
			Burst:          getEnvAsInt("BACKEND_RATE_LIMIT_BURST", 10),
			MaxConcurrent:  getEnvAsInt("BACKEND_MAX_CONCURRENT", 16),
			MaxFailures:    getEnvAsInt("BACKEND_BREAKER_MAX_FAILURES", 5),
			Cooldown:       getEnvAsDuration("BACKEND_BREAKER_COOLDOWN", 30*time.Second),
		},
		Assets: AssetSettings{
			LogoURL:       strings.TrimSpace(os.Getenv("LOGO_URL")),
			LogoPath:      strings.TrimSpace(os.Getenv("LOGO_PATH")),
			VerifyBaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("VERIFY_BASE_URL")), "/"),
			QRSize:        getEnvAsInt("QR_SIZE", 256),
			CacheTTL:      getEnvAsDuration("ASSET_CACHE_TTL", time.Hour),
		},
		Rendering: RenderingSettings{
			CompanyProfilePath: strings.TrimSpace(os.Getenv("COMPANY_PROFILE_PATH")),
			KeywordFallback:    getEnvAsBool("CATEGORY_KEYWORD_FALLBACK", true),
			BatchWorkers:       getEnvAsInt("RENDER_BATCH_WORKERS", 4),
		},
		Archive: ArchiveSettings{
			Dir:                  strings.TrimSpace(os.Getenv("ARCHIVE_DIR")),
			DriveFolderID:        strings.TrimSpace(os.Getenv("ARCHIVE_DRIVE_FOLDER_ID")),
			DriveCredentialsFile: strings.TrimSpace(os.Getenv("ARCHIVE_DRIVE_CREDENTIALS_FILE")),
		},
	}

	// Validate required configuration
	if cfg.Auth.Enabled {
		if cfg.Auth.IssuerURI == "" {
			return cfg, errors.New("invalid config: JWT_ISSUER_URI is required when AUTH_ENABLED=true")
		}
		if cfg.Auth.JWKSetURI == "" {
			return cfg, errors.New("invalid config: JWT_JWK_SET_URI is required when AUTH_ENABLED=true")
		}
	}
	if cfg.Backend.RequestsPerSec <= 0 {
		return cfg, errors.New("invalid config: BACKEND_RATE_LIMIT_RPS must be greater than 0")
	}
	if cfg.Backend.MaxConcurrent <= 0 {
		return cfg, errors.New("invalid config: BACKEND_MAX_CONCURRENT must be greater than 0")
	}
	if cfg.Rendering.BatchWorkers <= 0 {
		return cfg, errors.New("invalid config: RENDER_BATCH_WORKERS must be greater than 0")
	}
	if cfg.Archive.DriveFolderID != "" && cfg.Archive.DriveCredentialsFile == "" {
		return cfg, errors.New("invalid config: ARCHIVE_DRIVE_CREDENTIALS_FILE is required when ARCHIVE_DRIVE_FOLDER_ID is set")
	}

	return cfg, nil
}

// LoadProfile reads a company profile file and merges it over the built-in
// defaults. An empty path returns the defaults.
func LoadProfile(path string) (company.Profile, error) {
	profile := company.Default()
	if path == "" {
		return profile, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read company profile: %w", err)
	}

	var override company.Profile
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return profile, fmt.Errorf("parse company profile %s: %w", path, err)
	}
	return profile.Merge(override), nil
}

// Address returns the HTTP listen address in host:port form.
func (h HTTPSettings) Address() string {
	return fmt.Sprintf(":%d", h.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvAsCSV(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	// Drop blank entries such as trailing commas
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
