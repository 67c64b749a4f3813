package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/centinela/sentinel-backend/internal/api/rest"
	"github.com/centinela/sentinel-backend/internal/infrastructure/cache"
	"github.com/centinela/sentinel-backend/internal/infrastructure/config"
	"github.com/centinela/sentinel-backend/internal/infrastructure/database"
	"github.com/centinela/sentinel-backend/internal/infrastructure/telemetry"
	"github.com/centinela/sentinel-backend/internal/metrics"
	analyticsservice "github.com/centinela/sentinel-backend/internal/service/analytics"
	auditservice "github.com/centinela/sentinel-backend/internal/service/audit"
	scoringservice "github.com/centinela/sentinel-backend/internal/service/scoring"
)

func main() {
	var (
		configPath  = flag.String("config", "configs/config.yaml", "Path to configuration file")
		metricsAddr = flag.String("metrics-addr", ":9091", "Prometheus metrics listen address")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	buildInfo.WithLabelValues(cfg.Version).Set(1)

	ctx := context.Background()

	provider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    "sentinel-api",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SampleRate,
		ExportTimeout:  30 * time.Second,
		BatchTimeout:   5 * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Printf("Failed to shutdown telemetry: %v", err)
		}
	}()

	logger := telemetry.SetupLogger(cfg.LogLevel)
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create zap logger: %v", err)
	}
	defer zapLogger.Sync()

	pool, err := database.Connect(ctx, &cfg.Database, zapLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	summaryCache, err := cache.NewSummaryCache(&cfg.Redis, zapLogger)
	if err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	defer summaryCache.Close()

	registry, err := metrics.NewRegistry("sentinel-backend")
	if err != nil {
		log.Fatalf("Failed to create metrics registry: %v", err)
	}

	analysisRepo := database.NewAnalysisRepository(pool)
	activityRepo := database.NewActivityRepository(pool)
	changeRepo := database.NewSensitiveChangeRepository(pool)
	alertRepo := database.NewAlertRepository(pool)

	auditSvc := auditservice.NewService(activityRepo, changeRepo, alertRepo, registry, logger)
	scoringSvc := scoringservice.NewService(analysisRepo, auditSvc, registry, logger, cfg.Scoring.CriticalThreshold)
	analyticsSvc := analyticsservice.NewService(analysisRepo, activityRepo, changeRepo, auditSvc, summaryCache, registry, logger)

	handler := rest.NewHandler(scoringSvc, auditSvc, analyticsSvc, logger)
	server := rest.NewServer(&cfg.Server, handler, registry, logger)

	go serveMetrics(*metricsAddr, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-stop:
		logger.Info("shutdown signal received", "signal", sig.String())
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}
}
