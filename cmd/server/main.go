package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/tikulab/tiku-backend/internal/config"
	"github.com/tikulab/tiku-backend/internal/database"
	"github.com/tikulab/tiku-backend/internal/exam"
	"github.com/tikulab/tiku-backend/internal/handler"
	"github.com/tikulab/tiku-backend/internal/logger"
	"github.com/tikulab/tiku-backend/internal/repository"
	"github.com/tikulab/tiku-backend/internal/router"
	"github.com/tikulab/tiku-backend/internal/service"
	"github.com/tikulab/tiku-backend/internal/validator"
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
		Msg("Starting Tiku Backend")

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

	// ─── Initialize Repositories ───────────────────────────────────────
	bankRepo := repository.NewBankRepository(pool)
	historyRepo := repository.NewHistoryRepository(pool)
	bookRepo := repository.NewBookRepository(pool)
	snapshotRepo := repository.NewSnapshotRepository(rdb)

	// ─── Initialize Exam Engine ────────────────────────────────────────
	manager := exam.NewManager(historyRepo, bookRepo, snapshotRepo, log)

	// ─── Initialize Services ──────────────────────────────────────────
	bankService := service.NewBankService(bankRepo, log)
	sessionService := service.NewSessionService(manager, bankRepo, bookRepo, cfg, log)
	historyService := service.NewHistoryService(historyRepo, log)
	bookService := service.NewBookService(bookRepo, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Bank:    handler.NewBankHandler(bankService),
		Session: handler.NewSessionHandler(sessionService),
		History: handler.NewHistoryHandler(historyService),
		Book:    handler.NewBookHandler(bookService),
		WS:      handler.NewWSHandler(sessionService, log, cfg.AllowedOrigins),
	}

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

	// 2. Drain live exam sessions so their timers stop cleanly.
	sessionService.Shutdown()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
