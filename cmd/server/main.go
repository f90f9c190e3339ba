package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aptiva/examgate-backend/internal/config"
	"github.com/aptiva/examgate-backend/internal/database"
	"github.com/aptiva/examgate-backend/internal/handler"
	"github.com/aptiva/examgate-backend/internal/logger"
	"github.com/aptiva/examgate-backend/internal/repository"
	"github.com/aptiva/examgate-backend/internal/router"
	"github.com/aptiva/examgate-backend/internal/service"
	"github.com/aptiva/examgate-backend/internal/validator"
	"github.com/aptiva/examgate-backend/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.Setup("examgate-server", cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExamGate Backend")

	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)

	// Services
	audit := service.NewAuditPublisher(rdb, log)
	authService := service.NewAuthService(cfg, userRepo, audit)
	userService := service.NewUserService(userRepo, authService, audit)
	questionService := service.NewQuestionService(questionRepo, audit)
	examService := service.NewExamService(examRepo, questionRepo, audit)
	attemptService := service.NewAttemptService(examRepo, questionRepo, attemptRepo, rdb, audit, log)
	proctorService := service.NewProctorService(userRepo, attemptRepo)

	// Handlers
	handlers := &router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userService),
		Exam:     handler.NewExamHandler(examService),
		Question: handler.NewQuestionHandler(questionService),
		Attempt:  handler.NewAttemptHandler(attemptService),
		Proctor:  handler.NewProctorHandler(proctorService),
		Monitor:  handler.NewMonitorHandler(rdb, examService, log, cfg.AllowedOrigins),
	}

	// Background workers
	workerCtx, workerCancel := context.WithCancel(context.Background())

	auditWorker := worker.NewAuditWorker(pool, rdb, log)
	go auditWorker.Start(workerCtx)

	r := router.SetupRouter(authService, handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

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

	// 2. Stop background workers and wait for the audit queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
