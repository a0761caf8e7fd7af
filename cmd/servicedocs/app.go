package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"3tcapital/ms_service_documents/internal/adapters/assets"
	"3tcapital/ms_service_documents/internal/adapters/audit/memory"
	auditpg "3tcapital/ms_service_documents/internal/adapters/audit/postgres"
	"3tcapital/ms_service_documents/internal/adapters/backend"
	docshttp "3tcapital/ms_service_documents/internal/adapters/http/document"
	healthhttp "3tcapital/ms_service_documents/internal/adapters/http/health"
	"3tcapital/ms_service_documents/internal/adapters/pdf"
	"3tcapital/ms_service_documents/internal/adapters/sink"
	appdocument "3tcapital/ms_service_documents/internal/application/document"
	apphealth "3tcapital/ms_service_documents/internal/application/health"
	"3tcapital/ms_service_documents/internal/application/layout"
	"3tcapital/ms_service_documents/internal/core/audit"
	"3tcapital/ms_service_documents/internal/core/document"
	"3tcapital/ms_service_documents/internal/infrastructure/cache"
	"3tcapital/ms_service_documents/internal/infrastructure/config"
	"3tcapital/ms_service_documents/internal/infrastructure/database"
	httpclient "3tcapital/ms_service_documents/internal/infrastructure/http"
)

// app holds the wired pipeline shared by the serve and render commands.
type app struct {
	cfg     config.AppConfig
	log     *slog.Logger
	service *appdocument.Service
	checks  []apphealth.Check
	pool    *pgxpool.Pool
}

// newApp wires every component from configuration. extraSinks are appended
// after the configured archive sinks.
func newApp(ctx context.Context, cfg config.AppConfig, log *slog.Logger, extraSinks ...document.Sink) (*app, error) {
	a := &app{cfg: cfg, log: log}

	profile, err := config.LoadProfile(cfg.Rendering.CompanyProfilePath)
	if err != nil {
		return nil, err
	}

	var (
		auditRepo audit.Repository
		history   audit.GenerationRepository
	)
	if cfg.Database.Enabled {
		pool, err := database.NewPool(ctx, database.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			Database:        cfg.Database.Database,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.pool = pool
		log.Info("Database connection established", "host", cfg.Database.Host, "database", cfg.Database.Database)

		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(ctx, pool, log); err != nil {
				a.Close()
				return nil, err
			}
		}

		repo := auditpg.NewRepository(pool, log)
		auditRepo = repo
		history = repo
		a.checks = append(a.checks, apphealth.Check{Name: "postgres", Ping: pool.Ping})
	} else {
		log.Info("Database not configured, generation history kept in memory", "capacity", memory.DefaultCapacity)
		history = memory.NewRepository(memory.DefaultCapacity)
	}

	// Logo hosts and the backend are not expected to chain redirects.
	const maxRedirects = 3
	auditEnabled := cfg.Audit.Enabled && auditRepo != nil
	if cfg.Audit.Enabled && !auditEnabled {
		log.Warn("Audit trail disabled, database connection required", "audit_enabled_config", cfg.Audit.Enabled)
	}
	traced := func(provider string, maxConns int) *httpclient.TracedClient {
		return httpclient.NewTracedClient(&httpclient.TracedClientConfig{
			Timeout:         cfg.Backend.Timeout,
			AuditEnabled:    auditEnabled,
			LogRequestBody:  cfg.Audit.LogRequestBody,
			LogResponseBody: cfg.Audit.LogResponseBody,
			MaxBodySize:     cfg.Audit.MaxBodySize,
			MaxConnsPerHost: maxConns,
			MaxRedirects:    maxRedirects,
		}, log, auditRepo, provider)
	}

	var source document.RecordSource
	if cfg.Backend.BaseURL != "" {
		client := backend.NewClient(backend.Config{
			BaseURL:        cfg.Backend.BaseURL,
			Token:          cfg.Backend.Token,
			RequestsPerSec: cfg.Backend.RequestsPerSec,
			Burst:          cfg.Backend.Burst,
			MaxConcurrent:  int64(cfg.Backend.MaxConcurrent),
			MaxFailures:    cfg.Backend.MaxFailures,
			Cooldown:       cfg.Backend.Cooldown,
		}, traced("records", min(cfg.Backend.MaxConcurrent, 100)), log)
		source = client
		a.checks = append(a.checks, apphealth.Check{Name: "records_backend", Ping: client.Ready})
		log.Info("Records backend configured", "base_url", cfg.Backend.BaseURL, "audit", auditEnabled)
	} else {
		log.Warn("BACKEND_BASE_URL not set, only caller-supplied records can be rendered")
	}

	assetProvider := assets.NewProvider(assets.Config{
		LogoURL:       cfg.Assets.LogoURL,
		LogoPath:      cfg.Assets.LogoPath,
		VerifyBaseURL: cfg.Assets.VerifyBaseURL,
		QRSize:        cfg.Assets.QRSize,
	}, traced("assets", 0), cache.NewAssetCache(cfg.Assets.CacheTTL), log)

	sinks, err := archiveSinks(ctx, cfg.Archive, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	sinks = append(sinks, extraSinks...)

	geometry := layout.A4()
	a.service = appdocument.NewService(
		source,
		assetProvider,
		appdocument.NewNormalizer(profile, log, appdocument.WithKeywordFallback(cfg.Rendering.KeywordFallback)),
		layout.NewRenderer(profile, geometry),
		pdf.NewExporter(geometry, log),
		sinks,
		history,
		log,
	)
	return a, nil
}

func archiveSinks(ctx context.Context, cfg config.ArchiveSettings, log *slog.Logger) ([]document.Sink, error) {
	var sinks []document.Sink
	if cfg.Dir != "" {
		sinks = append(sinks, sink.NewDirectory(cfg.Dir))
		log.Info("Archiving documents to directory", "dir", cfg.Dir)
	}
	if cfg.DriveFolderID != "" {
		drive, err := sink.NewDrive(ctx, cfg.DriveCredentialsFile, cfg.DriveFolderID)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, drive)
		log.Info("Archiving documents to Google Drive", "folder_id", cfg.DriveFolderID)
	}
	return sinks, nil
}

// healthHandler exposes the dependency checks collected while wiring.
func (a *app) healthHandler() http.Handler {
	svc := apphealth.NewService(apphealth.Metadata{
		Service:     a.cfg.App.Name,
		Version:     a.cfg.App.Version,
		Environment: a.cfg.App.Environment,
	}, a.checks...)
	return http.HandlerFunc(healthhttp.NewHandler(svc, a.log).Status)
}

func (a *app) documentHandler() *docshttp.Handler {
	return docshttp.NewHandler(a.service, a.cfg.HTTP.MaxBodyBytes, a.log)
}

// Close releases the database pool.
func (a *app) Close() {
	if a.pool != nil {
		a.pool.Close()
	}
}
