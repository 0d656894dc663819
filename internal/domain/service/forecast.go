package service

import (
	"time"

	"FinCast/internal/domain/models"
)

// IndicatorEngine computes the indicator snapshot at the last observation.
type IndicatorEngine interface {
	Compute(h models.PriceHistory, cfg models.IndicatorConfig) (models.IndicatorSnapshot, error)
}

// TrendClassifier maps indicators to a direction and a per-step drift.
type TrendClassifier interface {
	Classify(s models.IndicatorSnapshot, cfg models.TrendConfig) (models.TrendBias, error)
}

// GenerateParams are the inputs of one projection.
type GenerateParams struct {
	CurrentPrice float64
	Bias         models.TrendBias
	Volatility   float64
	HorizonDays  int
	Confidence   float64
	LastDate     time.Time
	PriceFloor   float64 // lower bound for every band edge; 0 selects the generator default
}

// ForecastGenerator projects the mean path and confidence band.
type ForecastGenerator interface {
	Generate(p GenerateParams) ([]models.ForecastPoint, error)
}
