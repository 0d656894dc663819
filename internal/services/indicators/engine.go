// Package indicators computes RSI, moving averages and realized volatility over a daily close series.
package indicators

import (
	"fmt"
	"math"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
)

// Engine is stateless and safe for concurrent use.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Compute returns the indicator snapshot at the last observation of h.
func (Engine) Compute(h models.PriceHistory, cfg models.IndicatorConfig) (models.IndicatorSnapshot, error) {
	if err := cfg.Validate(); err != nil {
		return models.IndicatorSnapshot{}, err
	}
	need := cfg.RequiredHistory()
	if cfg.ShortWindow+1 > need {
		need = cfg.ShortWindow + 1
	}
	if h.Len() < need {
		return models.IndicatorSnapshot{}, fmt.Errorf("%w: have %d observations, need %d",
			models.ErrInsufficientHistory, h.Len(), need)
	}

	closes := h.Closes()
	// windows of at least 2 guarantee two or more returns here
	returns := LogReturns(closes)

	snap := models.IndicatorSnapshot{
		RSI:        RSI(closes, cfg.RSIWindow),
		SMAShort:   SMA(closes, cfg.ShortWindow),
		SMALong:    SMA(closes, cfg.LongWindow),
		Volatility: RealizedVolatility(returns, cfg.VolatilityWindow),
	}
	if math.IsNaN(snap.Volatility) || math.IsInf(snap.Volatility, 0) {
		return models.IndicatorSnapshot{}, fmt.Errorf("%w: volatility is not finite", models.ErrMalformedHistory)
	}
	return snap, nil
}

var _ domsvc.IndicatorEngine = Engine{}
