package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hostelhub/hostelhub-api/internal/config"
	"github.com/hostelhub/hostelhub-api/internal/domain/audit"
	"github.com/hostelhub/hostelhub-api/internal/domain/booking"
	"github.com/hostelhub/hostelhub-api/internal/domain/dashboard"
	"github.com/hostelhub/hostelhub-api/internal/domain/realtime"
	"github.com/hostelhub/hostelhub-api/internal/pkg/database"
	"github.com/hostelhub/hostelhub-api/internal/pkg/hostelapi"
	"github.com/hostelhub/hostelhub-api/internal/pkg/jwt"
	"github.com/hostelhub/hostelhub-api/internal/pkg/logger"
	"github.com/hostelhub/hostelhub-api/internal/pkg/receipt"
	"github.com/hostelhub/hostelhub-api/internal/pkg/storage"
)

func main() {
	// Money goes out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Str("backend", cfg.HostelAPIBaseURL).
		Msg("Starting HostelHub API")

	// ---------- Storage backends ----------
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if db != nil {
		if err := database.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)
	api := hostelapi.NewClient(cfg.HostelAPIBaseURL, cfg.HostelAPITimeout(), cfg.HostelAPIUserAgent)

	// ---------- Realtime ----------
	hub := realtime.NewHub(redis)
	go hub.Run()

	// ---------- Services ----------
	opts := booking.Options{
		Guard:    booking.NewGuard(redis, cfg.MutationLockTTL),
		Events:   hub,
		Location: cfg.Location(),
	}

	var auditService *audit.Service
	if db != nil {
		auditService = audit.NewService(audit.NewRepository(db))
		opts.Audit = auditService
	}

	var filesDir, filesPrefix string
	if cfg.ReceiptsEnabled {
		store, err := storage.New(storage.Config{
			Driver:      cfg.StorageDriver,
			LocalPath:   cfg.StorageLocalPath,
			PublicURL:   cfg.StoragePublicURL,
			S3Endpoint:  cfg.S3Endpoint,
			S3Region:    cfg.S3Region,
			S3Bucket:    cfg.S3Bucket,
			S3AccessKey: cfg.S3AccessKey,
			S3SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create receipt storage")
		}
		opts.Receipts = receipt.NewIssuer(store)

		if cfg.StorageDriver == "" || cfg.StorageDriver == "local" {
			filesDir = cfg.StorageLocalPath
			filesPrefix = "/files"
			if u, err := url.Parse(cfg.StoragePublicURL); err == nil && u.Path != "" {
				filesPrefix = u.Path
			}
		}
	}

	bookingService := booking.NewService(api, opts)
	dashboardService := dashboard.NewService(api, dashboard.NewRedisCache(redis), dashboard.Config{
		CacheTTL:    cfg.DashboardCacheTTL,
		Concurrency: cfg.DashboardConcurrency,
		Location:    cfg.Location(),
	})

	// ---------- Router ----------
	router := newRouter(deps{
		API:            api,
		JWT:            jwtService,
		Bookings:       bookingService,
		Dashboard:      dashboardService,
		Audit:          auditService,
		Hub:            hub,
		AllowedOrigins: cfg.AllowedOrigins,
		FilesDir:       filesDir,
		FilesPrefix:    filesPrefix,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Shutdown()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
