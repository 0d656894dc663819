// Package trend turns an indicator snapshot into a direction and a bounded per-step drift.
package trend

import (
	"fmt"
	"math"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
)

// smaTolerance treats averages within this relative distance as equal.
const smaTolerance = 1e-12

// Classifier is stateless and safe for concurrent use.
type Classifier struct{}

func NewClassifier() *Classifier { return &Classifier{} }

// Classify applies the threshold table:
//
//	RSI >= overbought   -> -reversion_weight * vol
//	RSI <= oversold     -> +reversion_weight * vol
//	SMA short > long    -> +trend_weight * vol
//	SMA short < long    -> -trend_weight * vol
//
// The sum is clamped to +/- max_drift_ratio * vol.
func (Classifier) Classify(s models.IndicatorSnapshot, cfg models.TrendConfig) (models.TrendBias, error) {
	if err := validate(cfg); err != nil {
		return models.TrendBias{}, err
	}
	if math.IsNaN(s.Volatility) || s.Volatility < 0 || math.IsNaN(s.RSI) {
		return models.TrendBias{}, fmt.Errorf("%w: snapshot rsi=%v vol=%v", models.ErrMalformedHistory, s.RSI, s.Volatility)
	}

	vol := s.Volatility
	drift := 0.0

	switch {
	case s.RSI >= cfg.Overbought:
		drift -= cfg.ReversionWeight * vol
	case s.RSI <= cfg.Oversold:
		drift += cfg.ReversionWeight * vol
	}

	switch compareSMA(s.SMAShort, s.SMALong) {
	case 1:
		drift += cfg.TrendWeight * vol
	case -1:
		drift -= cfg.TrendWeight * vol
	}

	limit := cfg.MaxDriftRatio * vol
	drift = math.Max(-limit, math.Min(limit, drift))

	return models.TrendBias{Direction: directionOf(drift), Drift: drift}, nil
}

func validate(cfg models.TrendConfig) error {
	switch {
	case cfg.Oversold >= cfg.Overbought:
		return fmt.Errorf("%w: oversold %v must be below overbought %v", models.ErrInvalidConfig, cfg.Oversold, cfg.Overbought)
	case cfg.TrendWeight < 0 || cfg.ReversionWeight < 0:
		return fmt.Errorf("%w: weights must be non-negative", models.ErrInvalidConfig)
	case cfg.MaxDriftRatio < 0 || cfg.MaxDriftRatio > 1:
		return fmt.Errorf("%w: max_drift_ratio %v outside [0, 1]", models.ErrInvalidConfig, cfg.MaxDriftRatio)
	}
	return nil
}

func compareSMA(short, long float64) int {
	if math.Abs(short-long) <= smaTolerance*math.Max(math.Abs(short), math.Abs(long)) {
		return 0
	}
	if short > long {
		return 1
	}
	return -1
}

func directionOf(drift float64) models.Direction {
	switch {
	case drift > 0:
		return models.Bullish
	case drift < 0:
		return models.Bearish
	default:
		return models.Neutral
	}
}

var _ domsvc.TrendClassifier = Classifier{}
