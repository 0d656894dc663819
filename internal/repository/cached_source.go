package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/internal/service/cache"
	apimetrics "FinCast/internal/service/metrics"
	applogger "FinCast/pkg/logger"
)

// CachedPriceSource memoizes histories by symbol and day range.
// Cache failures are logged and fall through to the inner source.
type CachedPriceSource struct {
	inner domrepo.PriceSource
	cache cache.BytesCache
	ttl   time.Duration
	l     *applogger.Logger
}

// NewCachedPriceSource wraps inner with c.
func NewCachedPriceSource(inner domrepo.PriceSource, c cache.BytesCache, ttl time.Duration, l *applogger.Logger) domrepo.PriceSource {
	if l == nil {
		l = applogger.Nop()
	}
	return &CachedPriceSource{inner: inner, cache: c, ttl: ttl, l: l}
}

func (s *CachedPriceSource) History(ctx context.Context, symbol string, from, to time.Time) (models.PriceHistory, error) {
	key := historyKey(symbol, from, to)

	if b, ok, err := s.cache.GetBytes(ctx, key); err != nil {
		apimetrics.CacheLookups.WithLabelValues("error").Inc()
		s.l.Warn("history cache get failed", applogger.String("key", key), applogger.Error(err))
	} else if ok {
		var obs []models.PriceObservation
		if err := json.Unmarshal(b, &obs); err == nil {
			if h, err := models.NewPriceHistory(obs); err == nil {
				apimetrics.CacheLookups.WithLabelValues("hit").Inc()
				return h, nil
			}
		}
		apimetrics.CacheLookups.WithLabelValues("corrupt").Inc()
	} else {
		apimetrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	h, err := s.inner.History(ctx, symbol, from, to)
	if err != nil {
		return h, err
	}
	if b, err := json.Marshal(h.Observations()); err == nil {
		if err := s.cache.SetBytes(ctx, key, b, s.ttl); err != nil {
			s.l.Warn("history cache set failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return h, nil
}

func historyKey(symbol string, from, to time.Time) string {
	return fmt.Sprintf("history:%s:%s:%s", symbol,
		models.TruncateDay(from).Format(models.DateLayout),
		models.TruncateDay(to).Format(models.DateLayout))
}
