package forecast

import (
	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
	"FinCast/internal/services/indicators"
	"FinCast/internal/services/trend"
)

// Pipeline runs indicators, classification, projection and assembly as one pure call.
type Pipeline struct {
	engine     domsvc.IndicatorEngine
	classifier domsvc.TrendClassifier
	generator  domsvc.ForecastGenerator
}

// NewPipeline wires the default engine and classifier around a generator for cal.
func NewPipeline(cal *Calendar) *Pipeline {
	return &Pipeline{
		engine:     indicators.NewEngine(),
		classifier: trend.NewClassifier(),
		generator:  NewGenerator(cal),
	}
}

// Run analyzes h for symbol under cfg. Identical inputs give identical results.
func (p *Pipeline) Run(symbol string, h models.PriceHistory, cfg models.EngineConfig) (models.ForecastResult, error) {
	snap, err := p.engine.Compute(h, cfg.Indicators)
	if err != nil {
		return models.ForecastResult{}, err
	}
	bias, err := p.classifier.Classify(snap, cfg.Trend)
	if err != nil {
		return models.ForecastResult{}, err
	}
	last, _ := h.Last()
	path, err := p.generator.Generate(domsvc.GenerateParams{
		CurrentPrice: last.Close,
		Bias:         bias,
		Volatility:   snap.Volatility,
		HorizonDays:  cfg.Forecast.HorizonDays,
		Confidence:   cfg.Forecast.Confidence,
		LastDate:     last.Date,
		PriceFloor:   cfg.Forecast.PriceFloor,
	})
	if err != nil {
		return models.ForecastResult{}, err
	}
	return Build(symbol, h, snap, bias, path, cfg)
}
