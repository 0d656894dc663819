package repository

import (
	"context"
	"time"

	"FinCast/internal/domain/models"
)

// PriceSource loads a daily close history for a symbol covering at least [from, to].
type PriceSource interface {
	History(ctx context.Context, symbol string, from, to time.Time) (models.PriceHistory, error)
}

// HistoryStore persists fetched closes so they can serve as a fallback source.
type HistoryStore interface {
	PriceSource
	SaveHistory(ctx context.Context, symbol string, h models.PriceHistory) error
}

// ForecastSink receives every completed forecast (archive, event bus, live push).
type ForecastSink interface {
	Name() string
	Publish(ctx context.Context, r models.ForecastResult) error
}

// Metrics records forecast service metrics.
type Metrics interface {
	RecordForecast(symbol string, trend models.Direction)
	RecordError(kind string)
	RecordTargetPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
