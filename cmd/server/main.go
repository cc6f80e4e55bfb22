package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/mcq-engine/internal/config"
	"github.com/stemsi/mcq-engine/internal/handler"
	"github.com/stemsi/mcq-engine/internal/logger"
	"github.com/stemsi/mcq-engine/internal/middleware"
	"github.com/stemsi/mcq-engine/internal/router"
	"github.com/stemsi/mcq-engine/internal/service"
	"github.com/stemsi/mcq-engine/internal/validator"
	"github.com/stemsi/mcq-engine/internal/worker"
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
		Str("storage", string(cfg.StorageDriver)).
		Str("score_write_mode", string(cfg.ScoreWriteMode)).
		Msg("Starting MCQ engine")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Storage ──────────────────────────────────────────────────
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", string(cfg.StorageDriver)).Msg("Failed to open storage")
	}
	defer store.close()

	questionRepo, scoreRepo := store.questions, store.scores

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	questionService := service.NewQuestionService(questionRepo)
	leaderboardService := service.NewLeaderboardService(scoreRepo)
	sessions := service.NewSessionStore(questionRepo, scoreRepo, log)
	answerLimiter := middleware.NewRateLimiter(cfg.AnswerRatePerMinute, time.Minute)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(),
		Question:    handler.NewQuestionHandler(questionService),
		Quiz:        handler.NewQuizHandler(sessions),
		Leaderboard: handler.NewLeaderboardHandler(leaderboardService, cfg.LeaderboardSize, cfg.RecentScoresLimit),
		WS:          handler.NewWSHandler(sessions, answerLimiter, log, cfg.AllowedOrigins),
		System:      handler.NewSystemHandler(sessions, store.rdb, log),

		AnswerLimiter: answerLimiter,
	}

	// ─── Start Background Workers ─────────────────────────────────────
	// With Redis the score worker also runs in direct mode so records
	// queued before a mode switch still reach PostgreSQL.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	workers.Add(1)
	go func() {
		defer workers.Done()
		sessions.RunPruner(workerCtx, cfg.SessionIdleTimeout, time.Minute)
	}()

	if store.rdb != nil {
		scoreWorker := worker.NewScoreWorker(store.writer, store.rdb, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			scoreWorker.Start(workerCtx)
		}()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

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

	// 2. Stop the score worker and the session pruner, waiting for the
	// worker's final flush.
	workerCancel()
	workers.Wait()

	log.Info().Int("live_sessions", sessions.Len()).Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
