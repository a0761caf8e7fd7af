package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"3tcapital/ms_service_documents/internal/infrastructure/config"
	"3tcapital/ms_service_documents/internal/infrastructure/http/server"
	"3tcapital/ms_service_documents/internal/infrastructure/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the document HTTP API",
		Long: `Serve the document API:

  GET  /health
  GET  /api/v1/documents/{kind}/{id}/pdf
  POST /api/v1/documents/{kind}/pdf
  GET  /api/v1/documents/history

kind is "quotation" or "invoice".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logger.New(cfg.App.Name, cfg.Log.Level, cfg.App.Environment)

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			srv, err := server.New(server.Options{
				Config:         cfg,
				Logger:         log,
				HealthHandler:  a.healthHandler(),
				DocumentRoutes: a.documentHandler().Routes,
			})
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			defer srv.Close()

			log.Info("Starting HTTP server", "port", cfg.HTTP.Port, "auth_enabled", cfg.Auth.Enabled)
			return srv.Run(ctx)
		},
	}
}
