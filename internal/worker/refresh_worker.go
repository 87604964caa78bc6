package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RankingLoader reloads the overall ranking.
type RankingLoader interface {
	LoadOverallRanking(ctx context.Context) error
}

// LoaderFunc adapts a function to RankingLoader.
type LoaderFunc func(ctx context.Context) error

func (f LoaderFunc) LoadOverallRanking(ctx context.Context) error { return f(ctx) }

// RefreshWorker periodically re-fetches the overall ranking so the in-memory
// list follows upstream changes. A failed refresh keeps the current list.
type RefreshWorker struct {
	loader   RankingLoader
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// NewRefreshWorker creates a new RefreshWorker. Each reload is bounded by timeout.
func NewRefreshWorker(loader RankingLoader, interval, timeout time.Duration, log zerolog.Logger) *RefreshWorker {
	return &RefreshWorker{
		loader:   loader,
		interval: interval,
		timeout:  timeout,
		log:      log.With().Str("component", "refresh_worker").Logger(),
	}
}

// Start runs the refresh loop until ctx is cancelled. Call in a goroutine.
// A non-positive interval disables the worker.
func (w *RefreshWorker) Start(ctx context.Context) {
	if w.interval <= 0 {
		w.log.Info().Msg("Worker disabled")
		return
	}
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *RefreshWorker) refresh(ctx context.Context) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := w.loader.LoadOverallRanking(ctx); err != nil {
		if ctx.Err() == nil {
			w.log.Warn().Err(err).Msg("Refresh failed, keeping current list")
		}
		return
	}
	w.log.Debug().Dur("took", time.Since(start)).Msg("Ranking refreshed")
}
