package forecast

import (
	"fmt"
	"strings"

	"FinCast/internal/domain/models"
)

// Build assembles the result. The target price is the last mean of the path.
func Build(
	symbol string,
	h models.PriceHistory,
	snap models.IndicatorSnapshot,
	bias models.TrendBias,
	path []models.ForecastPoint,
	cfg models.EngineConfig,
) (models.ForecastResult, error) {
	last, ok := h.Last()
	if !ok {
		return models.ForecastResult{}, fmt.Errorf("%w: empty history", models.ErrInsufficientHistory)
	}
	if len(path) == 0 {
		return models.ForecastResult{}, fmt.Errorf("%w: empty forecast path", models.ErrInvalidHorizon)
	}
	points := make([]models.ForecastPoint, len(path))
	copy(points, path)

	return models.ForecastResult{
		Symbol:       strings.ToUpper(strings.TrimSpace(symbol)),
		CurrentPrice: last.Close,
		TargetPrice:  points[len(points)-1].Mean,
		AsOf:         last.Date,
		Indicators:   snap,
		RSISignal:    snap.Signal(cfg.Trend.Overbought, cfg.Trend.Oversold),
		Bias:         bias,
		History:      h.Tail(cfg.HistoryEcho),
		Path:         points,
	}, nil
}
