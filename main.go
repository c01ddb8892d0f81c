package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payout-sync/internal/api"
	"payout-sync/internal/config"
	"payout-sync/internal/core"
	"payout-sync/internal/db"
	"payout-sync/internal/gumroad"
	"payout-sync/internal/logging"
	"payout-sync/internal/redis"
	"payout-sync/internal/storage"
	"payout-sync/internal/widget"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting_service", "service", "payout-sync", "http_addr", cfg.HTTPAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbConn, err := db.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Error("db_connect_failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	settings := db.NewSettingsStore(dbConn)
	if err := settings.EnsureSchema(ctx); err != nil {
		logger.Error("settings_schema_failed", "error", err)
		os.Exit(1)
	}

	// connect to redis
	redisClient, err := redis.New(cfg.RedisDSN)
	if err != nil {
		logger.Error("redis_connect_failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	cache := storage.NewCache(logger, redisClient)
	remote := gumroad.NewClient(logger, cfg.GumroadBaseURL)
	widgetProvider := widget.NewProvider(logger, cache)

	// snapshot archive: real S3 when an endpoint is configured, the
	// simulator otherwise
	var archiver storage.SnapshotArchiver
	if cfg.ArchiveEnabled {
		if cfg.ArchiveEndpoint != "" {
			s3Archive, err := storage.NewS3Archive(storage.S3Config{
				Endpoint:  cfg.ArchiveEndpoint,
				Bucket:    cfg.ArchiveBucket,
				PublicURL: cfg.ArchivePublicURL,
				Region:    cfg.ArchiveRegion,
			})
			if err != nil {
				logger.Warn("archive_init_failed", "error", err)
			} else {
				archiver = s3Archive
				logger.Info("archive_initialized", "bucket", cfg.ArchiveBucket)
			}
		} else {
			archiver = storage.NewArchiveSimulator(cfg.ArchiveBucket, cfg.ArchiveEndpoint)
			logger.Info("archive_simulator_active")
		}
	}

	syncCore := core.New(logger, remote, cache, settings, core.Options{
		Notifier: widgetProvider,
		Archiver: archiver,
	})
	if err := syncCore.Start(ctx); err != nil {
		logger.Error("core_start_failed", "error", err)
		os.Exit(1)
	}

	srv := api.NewServer(logger, cfg, dbConn, redisClient, syncCore, widgetProvider)
	srv.Start()

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_listen_failed", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("api_server_ready", "addr", cfg.HTTPAddr)

	// graceful shutdown
	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// stop accepting new http requests
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_shutdown_failed", "error", err)
	} else {
		logger.Info("http_server_stopped")
	}

	// close stream consumers and the auto-refresh timer
	srv.Stop()
	syncCore.Close()
	logger.Info("core_stopped")

	if err := redisClient.Close(); err != nil {
		logger.Warn("redis_close_error", "error", err)
	} else {
		logger.Info("redis_closed")
	}

	dbConn.Close()
	logger.Info("db_closed")

	logger.Info("service_stopped")
}
