package usecase

import (
	"context"
	"time"

	"FinCast/internal/domain/models"
	applogger "FinCast/pkg/logger"
)

// WatchlistRefresh re-forecasts a fixed symbol list, typically after the close.
type WatchlistRefresh struct {
	batch     *BatchUseCase
	watchlist []string
	timeout   time.Duration
	l         *applogger.Logger
}

func NewWatchlistRefresh(batch *BatchUseCase, watchlist []string, timeout time.Duration, l *applogger.Logger) *WatchlistRefresh {
	if l == nil {
		l = applogger.Nop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &WatchlistRefresh{batch: batch, watchlist: watchlist, timeout: timeout, l: l}
}

// Run analyzes every watchlist symbol and logs a summary.
func (w *WatchlistRefresh) Run(ctx context.Context) models.BatchResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	out := w.batch.AnalyzeMany(ctx, w.watchlist, models.Overrides{})
	w.l.Info("watchlist refresh done",
		applogger.Int("symbols", len(w.watchlist)),
		applogger.Int("ok", len(out.Results)),
		applogger.Int("failed", len(out.Failures)),
		applogger.Duration("took", time.Since(start)),
	)
	for sym, msg := range out.Failures {
		w.l.Warn("watchlist symbol failed", applogger.String("symbol", sym), applogger.String("error", msg))
	}
	return out
}
