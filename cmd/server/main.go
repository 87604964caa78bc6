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
	"github.com/unirank/rankbrowser/internal/cache"
	"github.com/unirank/rankbrowser/internal/config"
	"github.com/unirank/rankbrowser/internal/database"
	"github.com/unirank/rankbrowser/internal/handler"
	"github.com/unirank/rankbrowser/internal/logger"
	"github.com/unirank/rankbrowser/internal/middleware"
	"github.com/unirank/rankbrowser/internal/repository"
	"github.com/unirank/rankbrowser/internal/router"
	"github.com/unirank/rankbrowser/internal/service"
	"github.com/unirank/rankbrowser/internal/state"
	"github.com/unirank/rankbrowser/internal/validator"
	"github.com/unirank/rankbrowser/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("backend", cfg.BackendURL).
		Str("cache", cfg.CacheType).
		Msg("Starting rankbrowser")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Initialize Cache ──────────────────────────────────────────────
	var store cache.Store = cache.NewMemory(10 * time.Minute)
	if cfg.CacheType == "redis" {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory cache")
		} else {
			defer rdb.Close()
			store = cache.NewRedis(rdb)
		}
	}

	// ─── Initialize Repositories ───────────────────────────────────────
	rankingRepo := repository.NewRankingRepository(cfg.BackendURL, cfg.BackendTimeout)

	// ─── Initialize Services ──────────────────────────────────────────
	universities := state.NewUniversities()
	rankingService := service.NewRankingService(rankingRepo, universities, log)
	subjectService := service.NewSubjectService(rankingRepo, store, service.SubjectOptions{
		CatalogTTL:  cfg.CatalogCacheTTL,
		RankTTL:     cfg.RankCacheTTL,
		Concurrency: cfg.USNewsConcurrency,
	}, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Page: handler.NewPageHandler(rankingService, subjectService, log),
		API:  handler.NewAPIHandler(rankingService, subjectService),
	}

	// ─── Prewarm ──────────────────────────────────────────────────────
	// Load the list and the subject catalog before accepting traffic. A
	// failure here is not fatal: pages retry the list load lazily and show
	// the error until the backend answers.
	if _, err := rankingService.LoadOverallRanking(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial ranking load failed")
	}
	if _, err := subjectService.Catalog(ctx); err != nil {
		log.Warn().Err(err).Msg("Subject catalog prewarm failed")
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	refreshWorker := worker.NewRefreshWorker(worker.LoaderFunc(func(ctx context.Context) error {
		_, err := rankingService.LoadOverallRanking(ctx)
		return err
	}), cfg.RefreshInterval, cfg.BackendTimeout, log)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute)
		workers.Add(1)
		go func() {
			defer workers.Done()
			limiter.Start(workerCtx)
		}()
	}

	workers.Add(1)
	go func() {
		defer workers.Done()
		refreshWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r, err := router.SetupRouter(handlers, limiter, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up router")
	}

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
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

	// 2. Stop background workers.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
