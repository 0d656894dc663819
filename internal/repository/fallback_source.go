package repository

import (
	"context"
	"errors"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"
)

// FallbackPriceSource reads from primary and, when primary fails, from the store.
// Successful primary reads are written back to the store.
type FallbackPriceSource struct {
	primary domrepo.PriceSource
	store   domrepo.HistoryStore
	l       *applogger.Logger
}

// NewFallbackPriceSource chains primary and store.
func NewFallbackPriceSource(primary domrepo.PriceSource, store domrepo.HistoryStore, l *applogger.Logger) domrepo.PriceSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &FallbackPriceSource{primary: primary, store: store, l: l}
}

func (s *FallbackPriceSource) History(ctx context.Context, symbol string, from, to time.Time) (models.PriceHistory, error) {
	h, err := s.primary.History(ctx, symbol, from, to)
	if err == nil {
		if serr := s.store.SaveHistory(ctx, symbol, h); serr != nil {
			s.l.Warn("history write-back failed", applogger.String("symbol", symbol), applogger.Error(serr))
		}
		return h, nil
	}
	if ctx.Err() != nil {
		return models.PriceHistory{}, err
	}

	s.l.Warn("primary source failed, using store", applogger.String("symbol", symbol), applogger.Error(err))
	stored, serr := s.store.History(ctx, symbol, from, to)
	if serr != nil {
		if errors.Is(serr, models.ErrSymbolNotFound) {
			return models.PriceHistory{}, err
		}
		return models.PriceHistory{}, errors.Join(err, serr)
	}
	return stored, nil
}
