package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/learnforge/learnforge-backend/internal/ai"
	"github.com/learnforge/learnforge-backend/internal/config"
	"github.com/learnforge/learnforge-backend/internal/database"
	"github.com/learnforge/learnforge-backend/internal/handler"
	"github.com/learnforge/learnforge-backend/internal/judge0"
	"github.com/learnforge/learnforge-backend/internal/logger"
	"github.com/learnforge/learnforge-backend/internal/repository"
	"github.com/learnforge/learnforge-backend/internal/router"
	"github.com/learnforge/learnforge-backend/internal/service"
	"github.com/learnforge/learnforge-backend/internal/validator"
	"github.com/learnforge/learnforge-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting LearnForge Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Upstream Clients ───────────────────────────────────
	judgeClient := judge0.NewClient(cfg, log)

	var generator ai.Generator
	if cfg.OpenAIMock {
		log.Warn().Msg("Completion backend mocked (OPENAI_MOCK)")
		generator = ai.MockGenerator{}
	} else {
		if cfg.OpenAIKey == "" {
			log.Fatal().Msg("OPENAI_API_KEY is required unless OPENAI_MOCK is set")
		}
		generator = ai.NewClient(cfg, log)
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	runRepo := repository.NewRunRepository(pool)

	// ─── Initialize Services ───────────────────────────────────────────
	learningService := service.NewLearningService(generator, rdb, cfg.AICacheTTL, log)
	executionService := service.NewExecutionService(judgeClient, runRepo, rdb, log)

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Learning:  handler.NewLearningHandler(learningService, log),
		Execution: handler.NewExecutionHandler(executionService, log),
		WS:        handler.NewWSHandler(executionService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ──────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	runPersistWorker := worker.NewRunPersistWorker(pool, rdb, log)
	go runPersistWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow workers to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
