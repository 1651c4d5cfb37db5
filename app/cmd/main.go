package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edge/app/config"
	"edge/app/usecase"
	"edge/internal/infrastructure/metrics"
	"edge/internal/infrastructure/store/filesystem"
	"edge/internal/infrastructure/transport"
	"edge/internal/infrastructure/upstream"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to an HCL config file")
	flag.Parse()

	// load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// logger
	level, _ := config.ParseLevel(cfg.Log.Level)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// Static site root is checked once here and passed down
	siteRepo := filesystem.NewSiteRepository(cfg.Static.Root)
	if !siteRepo.Available() {
		logger.Warn("static root not found, run the frontend build first; static routes will return 404",
			"root", siteRepo.GetBasePath())
	} else {
		logger.Info("serving static site", "root", siteRepo.GetBasePath(), "asset_prefix", cfg.Static.AssetPrefix)
	}

	// Query service client
	queryClient := upstream.NewQueryServiceClient(cfg.Upstream.URL, cfg.Upstream.Timeout, cfg.Upstream.MaxBodySize, logger)

	// Usecases / services
	generateSvc := usecase.NewGenerateService(queryClient, logger)
	siteSvc := usecase.NewSiteService(siteRepo)

	// Transport (HTTP handlers)
	handler := transport.NewEdgeHandler(generateSvc, siteSvc, cfg.Static.AssetPrefix, logger)

	addr := cfg.Server.Addr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		metricsSrv = metrics.NewMetricsServer(cfg.Metrics.Addr)
		go func() {
			logger.Info("starting metrics server", "addr", cfg.Metrics.Addr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "err", err)
			}
		}()
	}

	// Start HTTP server
	go func() {
		logger.Info("starting HTTP server", "addr", addr, "upstream", cfg.Upstream.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "err", err)
			cancel()
		}
	}()

	// OS signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	// Shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", "err", err)
		}
	}

	logger.Info("service stopped")
}
