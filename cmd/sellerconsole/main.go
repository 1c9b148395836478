// Package main is the entry point for the BuyBox seller console server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sellerconsole/internal/backend"
	"sellerconsole/internal/cache"
	"sellerconsole/internal/config"
	"sellerconsole/internal/database"
	"sellerconsole/internal/handlers"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/render"
	"sellerconsole/internal/router"
	"sellerconsole/internal/session"
	"sellerconsole/internal/staging"
	"sellerconsole/internal/storage"
	"sellerconsole/internal/store"
	"sellerconsole/web"
)

func main() {
	// Load configuration from environment variables (and .env when present).
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text elsewhere.
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"backend", cfg.BackendURL,
		"upload_mode", cfg.UploadMode,
	)

	// Connect to Valkey (sessions, drafts, previews, reference data).
	valkeyClient, err := cache.ConnectValkey(context.Background(), cfg.ValkeyAddr(), cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Connect to PostgreSQL for the upload ledger. Outside production the
	// console runs without it.
	var uploads *store.UploadStore
	db, err := database.Connect(cfg.DSN())
	switch {
	case err == nil:
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		uploads = store.NewUploadStore(db)
	case cfg.IsProduction():
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	default:
		slog.Warn("database unavailable, upload ledger disabled", "error", err)
	}

	// S3-compatible object storage, only when images are hosted by the console.
	var storageClient *storage.Client
	if cfg.UploadMode == config.UploadS3 {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	}

	// The backend token is sealed before it is stored in the session.
	sealer, err := session.NewSealer(cfg.SessionSecret)
	if err != nil {
		slog.Error("failed to initialize session sealer", "error", err)
		os.Exit(1)
	}
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies, sealer)

	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		slog.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}

	api := backend.New(cfg.BackendURL, cfg.BackendTimeout)
	stage := staging.New(valkeyClient, cfg.DraftTTL)
	refs := cache.NewRefCache(valkeyClient, 0)

	consoleHandlers := handlers.NewConsole(renderer, sessionStore, api, stage, refs, uploads, storageClient)
	authHandlers := handlers.NewAuth(renderer, sessionStore, api)

	limiter := middleware.NewRateLimiter(valkeyClient, cfg.LoginRateLimit, time.Minute)

	r := router.New(sessionStore, consoleHandlers, authHandlers, limiter, secureCookies, static)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if uploads != nil {
		go startSweeper(ctx, uploads, storageClient, cfg)
	}

	// Uploads of up to five images or one video need a generous write window.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

// startSweeper runs the orphaned upload sweeper until ctx ends. Without
// console-hosted storage orphans are only marked.
func startSweeper(ctx context.Context, uploads *store.UploadStore, objects *storage.Client, cfg *config.Config) {
	var sweeper *store.Sweeper
	if objects != nil {
		sweeper = store.NewSweeper(uploads, objects, cfg.OrphanGrace, cfg.SweepInterval)
	} else {
		sweeper = store.NewSweeper(uploads, nil, cfg.OrphanGrace, cfg.SweepInterval)
	}
	sweeper.Run(ctx)
}
