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

	"github.com/msomdec/storefront/internal/config"
	"github.com/msomdec/storefront/internal/domain"
	"github.com/msomdec/storefront/internal/handler"
	"github.com/msomdec/storefront/internal/repository/disk"
	"github.com/msomdec/storefront/internal/repository/postgres"
	"github.com/msomdec/storefront/internal/repository/s3store"
	"github.com/msomdec/storefront/internal/repository/sqlite"
	"github.com/msomdec/storefront/internal/service"
)

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	files, err := openFileStore(ctx, cfg, db)
	if err != nil {
		slog.Error("failed to open asset store", "error", err)
		os.Exit(1)
	}

	ids, err := service.NewAllocator(cfg.IDAllocation, db.Products(), db.Sequences())
	if err != nil {
		slog.Error("failed to configure id allocation", "error", err)
		os.Exit(1)
	}
	slog.Info("product id allocation", "policy", cfg.IDAllocation)

	authLimiter := service.NewTokenBucket(cfg.AuthRate, cfg.AuthBurst)
	defer authLimiter.Close()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Auth:        service.NewAuthService(db.Users(), cfg.JWTSecret, cfg.BcryptCost, cfg.TokenTTL),
		Catalog:     service.NewCatalogService(db.Products(), ids),
		Carts:       service.NewCartService(db.Users()),
		Images:      service.NewImageService(files, cfg.PublicBaseURL),
		AuthLimiter: authLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Wrap(mux, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func openDatabase(ctx context.Context, cfg *config.Config) (domain.Database, error) {
	if cfg.UsesPostgres() {
		slog.Info("using postgres database")
		return postgres.New(ctx, cfg.DatabaseURL)
	}
	slog.Info("using sqlite database", "path", cfg.DatabaseURL)
	return sqlite.New(cfg.DatabaseURL)
}

func openFileStore(ctx context.Context, cfg *config.Config, db domain.Database) (domain.FileStore, error) {
	switch cfg.AssetStore {
	case config.AssetStoreDisk:
		return disk.New(cfg.UploadDir)
	case config.AssetStoreDB:
		return db.FileStore(), nil
	case config.AssetStoreS3:
		return s3store.New(ctx, s3store.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return nil, fmt.Errorf("unknown asset store %q", cfg.AssetStore)
}
