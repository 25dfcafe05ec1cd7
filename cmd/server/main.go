package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightwave/profiler/internal/api"
	"github.com/brightwave/profiler/internal/authz"
	"github.com/brightwave/profiler/internal/catalog"
	"github.com/brightwave/profiler/internal/config"
	"github.com/brightwave/profiler/internal/database"
	"github.com/brightwave/profiler/internal/group"
	"github.com/brightwave/profiler/internal/profile"
	"github.com/brightwave/profiler/internal/settings"
	"github.com/brightwave/profiler/internal/staff"
	"github.com/brightwave/profiler/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := catalog.NewStore(cfg.ProfilersDir, cfg.PracticeDir)

	staffRepo := staff.NewRepository(db.Pool())
	groupRepo := group.NewRepository(db.Pool())
	profileRepo := profile.NewRepository(db.Pool())
	typeRepo := catalog.NewRepository(db.Pool())
	settingsRepo := settings.NewRepository(db.Pool())

	startupCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := db.Migrate(startupCtx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	if err := db.SeedProfilerTypes(startupCtx, store, typeRepo); err != nil {
		slog.Error("failed to seed profiler types", "error", err)
		os.Exit(1)
	}

	if cfg.SeedDemoData {
		if err := database.SeedDemoData(startupCtx, groupRepo, typeRepo); err != nil {
			slog.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	key, err := token.LoadOrGenerateKey(cfg.JWTKeyPath)
	if err != nil {
		slog.Error("failed to load signing key", "error", err, "path", cfg.JWTKeyPath)
		os.Exit(1)
	}
	codec := token.New(key)

	sessionTTL := time.Duration(cfg.SessionTokenDays) * 24 * time.Hour
	profileTTL := time.Duration(cfg.ProfileTokenDays) * 24 * time.Hour

	staffService := staff.NewService(staffRepo, codec, cfg.BcryptCost, sessionTTL)
	gate := authz.NewGate(codec, staffService)

	if _, err := staffService.BootstrapAdmin(startupCtx, cfg.AdminEmail); err != nil {
		slog.Error("failed to bootstrap admin account", "error", err)
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterDeps{
		DB:              db,
		Version:         cfg.Version,
		Gate:            gate,
		Codec:           codec,
		StaffRepo:       staffRepo,
		StaffService:    staffService,
		Groups:          groupRepo,
		Profiles:        profileRepo,
		ProfilerTypes:   typeRepo,
		Catalog:         store,
		Settings:        settingsRepo,
		ProfileTokenTTL: profileTTL,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting profiler server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
