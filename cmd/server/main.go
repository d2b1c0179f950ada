package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/agrimarket/backend/internal/apps"
	"github.com/agrimarket/backend/internal/apps/bids"
	"github.com/agrimarket/backend/internal/apps/crophealth"
	"github.com/agrimarket/backend/internal/apps/farms"
	"github.com/agrimarket/backend/internal/apps/schemes"
	"github.com/agrimarket/backend/internal/config"
	"github.com/agrimarket/backend/internal/database"
	"github.com/agrimarket/backend/internal/logging"
	"github.com/agrimarket/backend/internal/routes"
	"github.com/agrimarket/backend/internal/services"
	"github.com/agrimarket/backend/internal/storage"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logging.Setup(cfg.AppEnv)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBDriver != "sqlite" && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.MigrateShared(database.DB); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// ERROR+ records also go to system_logs (async batch)
	dbLogHandler := logging.AttachDB(database.DB)

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Media storage
	ctx := context.Background()
	store, err := storage.New(ctx, cfg)
	if err != nil {
		slog.Error("media storage init failed", "backend", cfg.StorageBackend, "error", err)
		os.Exit(1)
	}

	// Modules, in migration order: bids reference farms.
	farmsModule := farms.New(store)
	modules := []apps.Module{
		farmsModule,
		bids.New(farmsModule.Service(database.DB)),
		schemes.New(),
		crophealth.New(store),
	}
	for _, m := range modules {
		if err := database.MigrateModels(database.DB, m.Models()); err != nil {
			slog.Error("module migration failed", "module", m.ID(), "error", err)
			os.Exit(1)
		}
		if im, ok := m.(apps.IndexMigrator); ok {
			if err := im.MigrateIndexes(database.DB); err != nil {
				slog.Error("module index migration failed", "module", m.ID(), "error", err)
				os.Exit(1)
			}
		}
		slog.Info("module migrated", "module", m.ID(), "models", len(m.Models()))
	}

	if cfg.SeedSchemes {
		if _, err := schemes.Seed(database.DB); err != nil {
			slog.Error("scheme seeding failed", "error", err)
		}
	}

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	authService := services.NewAuthService(database.DB, cfg)

	app := routes.NewApp(cfg)
	routes.Setup(app, cfg, database.DB, authService, modules)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.Error("media storage close error", "error", err)
		}
	}
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}
