package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/quillboard/quillboard-backend/internal/config"
	"github.com/quillboard/quillboard-backend/internal/db"
	"github.com/quillboard/quillboard-backend/internal/handlers"
	"github.com/quillboard/quillboard-backend/internal/observability"
	"github.com/quillboard/quillboard-backend/internal/platform/envutil"
	"github.com/quillboard/quillboard-backend/internal/platform/logger"
	"github.com/quillboard/quillboard-backend/internal/quality"
	"github.com/quillboard/quillboard-backend/internal/quality/stages"
	"github.com/quillboard/quillboard-backend/internal/repos"
	"github.com/quillboard/quillboard-backend/internal/server"
	"github.com/quillboard/quillboard-backend/internal/services"
	"github.com/quillboard/quillboard-backend/internal/telemetry"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "quillboard",
		Environment: envutil.GetEnv("DEPLOY_ENV", "development", log),
		Version:     envutil.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownOtel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(ctx)
		}()
	}

	// Pipeline config. Misconfiguration here is fatal: weights and
	// thresholds are validated before the first request, never per call.
	log.Info("Loading pipeline configuration...")
	cfg, err := config.Load("", log)
	if err != nil {
		log.Fatal("Pipeline config invalid", "error", err)
	}

	// Stage registry
	registry := quality.NewRegistry()
	for _, dim := range cfg.Pipeline.Dimensions {
		stage, ok := stages.ForDimension(quality.Dimension(dim.Name))
		if !ok {
			log.Fatal("No analyzer for configured dimension", "dimension", dim.Name)
		}
		var regErr error
		if dim.IsEnabled() {
			regErr = registry.Register(quality.Dimension(dim.Name), stage, dim.Weight, dim.Threshold)
		} else {
			regErr = registry.RegisterDisabled(quality.Dimension(dim.Name), stage, dim.Weight, dim.Threshold)
		}
		if regErr != nil {
			log.Fatal("Stage registration failed", "dimension", dim.Name, "error", regErr)
		}
	}
	if err := registry.Close(); err != nil {
		log.Fatal("Stage registry validation failed", "error", err)
	}

	scorer, err := quality.NewScorer(registry, cfg.Pipeline.GlobalThreshold, cfg.Pipeline.CriticalBar)
	if err != nil {
		log.Fatal("Scorer init failed", "error", err)
	}
	orch, err := quality.NewOrchestrator(registry, scorer, log, quality.Config{
		StageTimeout: cfg.Pipeline.StageTimeout(),
		RunDeadline:  cfg.Pipeline.RunDeadline(),
		MaxInFlight:  int64(cfg.Pipeline.MaxInFlight),
		Retry: quality.RetryPolicy{
			MaxAttempts: cfg.Pipeline.Retry.MaxAttempts,
			MinBackoff:  time.Duration(cfg.Pipeline.Retry.MinBackoffMS) * time.Millisecond,
			MaxBackoff:  time.Duration(cfg.Pipeline.Retry.MaxBackoffMS) * time.Millisecond,
			JitterFrac:  cfg.Pipeline.Retry.JitterFrac,
		},
	})
	if err != nil {
		log.Fatal("Orchestrator init failed", "error", err)
	}

	// Database
	database, err := db.New(log)
	if err != nil {
		log.Fatal("Database init failed", "error", err)
	}
	if err := database.AutoMigrateAll(); err != nil {
		log.Fatal("Database migration failed", "error", err)
	}
	gdb := database.DB()

	// Repos
	log.Info("Setting up repos...")
	versionRepo := repos.NewContentVersionRepo(gdb, log)
	runRepo := repos.NewEvaluationRunRepo(gdb, log)

	// Telemetry bus
	bus, err := telemetry.NewBus(log)
	if err != nil {
		log.Fatal("Telemetry bus init failed", "error", err)
	}
	defer bus.Close()

	// Services
	log.Info("Setting up services...")
	versionService := services.NewVersionService(log, versionRepo)
	evaluationService := services.NewEvaluationService(log, orch, runRepo, versionService, bus)

	// Handlers
	log.Info("Setting up handlers...")
	evaluationHandler := handlers.NewEvaluationHandler(log, evaluationService)
	versionHandler := handlers.NewVersionHandler(log, versionService)
	pipelineHandler := handlers.NewPipelineHandler(log, registry, scorer)

	// Router
	router := server.NewRouter(server.RouterConfig{
		EvaluationHandler: evaluationHandler,
		VersionHandler:    versionHandler,
		PipelineHandler:   pipelineHandler,
	})

	port := envutil.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
