package models

import (
	"fmt"
	"time"
)

// ForecastPoint is one projected business day.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Mean  float64   `json:"mean"`
	Lower float64   `json:"lower"`
	Upper float64   `json:"upper"`
}

// ForecastResult is the complete output of one analysis. It is built once and never mutated.
type ForecastResult struct {
	Symbol       string             `json:"symbol"`
	CurrentPrice float64            `json:"current_price"`
	TargetPrice  float64            `json:"target_price"`
	AsOf         time.Time          `json:"as_of"`
	Indicators   IndicatorSnapshot  `json:"indicators"`
	RSISignal    RSISignal          `json:"rsi_signal"`
	Bias         TrendBias          `json:"bias"`
	History      []PriceObservation `json:"historical"`
	Path         []ForecastPoint    `json:"forecast"`
}

// Trend returns the direction label.
func (r ForecastResult) Trend() Direction { return r.Bias.Direction }

// PriceChangePercent is the move from the current price to the target, in percent.
func (r ForecastResult) PriceChangePercent() float64 {
	if r.CurrentPrice == 0 {
		return 0
	}
	return (r.TargetPrice - r.CurrentPrice) / r.CurrentPrice * 100
}

// IndicatorConfig holds the indicator windows.
type IndicatorConfig struct {
	RSIWindow        int `json:"rsi_window" yaml:"rsi_window" default:"14"`
	ShortWindow      int `json:"short_window" yaml:"short_window" default:"5"`
	LongWindow       int `json:"long_window" yaml:"long_window" default:"20"`
	VolatilityWindow int `json:"volatility_window" yaml:"volatility_window" default:"30"`
}

// Validate rejects windows that cannot produce a meaningful snapshot. RSI and the long
// average need at least two closes each, so every accepted history yields two or more
// returns. A volatility window of one return has no sample deviation; 0 means all returns.
func (c IndicatorConfig) Validate() error {
	switch {
	case c.RSIWindow < 2:
		return fmt.Errorf("%w: rsi_window %d must be at least 2", ErrInvalidConfig, c.RSIWindow)
	case c.ShortWindow < 1:
		return fmt.Errorf("%w: short_window %d must be positive", ErrInvalidConfig, c.ShortWindow)
	case c.LongWindow < 2:
		return fmt.Errorf("%w: long_window %d must be at least 2", ErrInvalidConfig, c.LongWindow)
	case c.VolatilityWindow < 0 || c.VolatilityWindow == 1:
		return fmt.Errorf("%w: volatility_window %d must be 0 or at least 2", ErrInvalidConfig, c.VolatilityWindow)
	}
	return nil
}

// RequiredHistory is the minimum number of observations Compute accepts.
func (c IndicatorConfig) RequiredHistory() int {
	n := c.RSIWindow
	if c.LongWindow > n {
		n = c.LongWindow
	}
	return n + 1
}

// TrendConfig holds the classifier thresholds and weights.
// Components are fractions of daily volatility.
type TrendConfig struct {
	Overbought      float64 `json:"overbought" yaml:"overbought" default:"70"`
	Oversold        float64 `json:"oversold" yaml:"oversold" default:"30"`
	TrendWeight     float64 `json:"trend_weight" yaml:"trend_weight" default:"0.2"`
	ReversionWeight float64 `json:"reversion_weight" yaml:"reversion_weight" default:"0.1"`
	MaxDriftRatio   float64 `json:"max_drift_ratio" yaml:"max_drift_ratio" default:"1"`
}

// ForecastConfig holds the projection settings.
type ForecastConfig struct {
	HorizonDays int     `json:"horizon_days" yaml:"horizon_days" default:"14"`
	Confidence  float64 `json:"confidence" yaml:"confidence" default:"0.8"`
	PriceFloor  float64 `json:"price_floor" yaml:"price_floor" default:"0.01"`
}

// EngineConfig is passed explicitly to every analysis.
type EngineConfig struct {
	Indicators  IndicatorConfig `json:"indicators" yaml:"indicators"`
	Trend       TrendConfig     `json:"trend" yaml:"trend"`
	Forecast    ForecastConfig  `json:"forecast" yaml:"forecast"`
	HistoryEcho int             `json:"history_echo" yaml:"history_echo" default:"30"`
}

// DefaultEngineConfig returns the stock configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Indicators: IndicatorConfig{RSIWindow: 14, ShortWindow: 5, LongWindow: 20, VolatilityWindow: 30},
		Trend: TrendConfig{
			Overbought:      70,
			Oversold:        30,
			TrendWeight:     0.2,
			ReversionWeight: 0.1,
			MaxDriftRatio:   1,
		},
		Forecast:    ForecastConfig{HorizonDays: 14, Confidence: 0.8, PriceFloor: 0.01},
		HistoryEcho: 30,
	}
}

// Overrides are the per-request adjustments a caller may supply. Zero values keep the base setting.
type Overrides struct {
	RSIWindow   int     `query:"rsi_window" json:"rsi_window" validate:"omitempty,gte=2,lte=250"`
	ShortWindow int     `query:"short_window" json:"short_window" validate:"omitempty,gte=1,lte=250"`
	LongWindow  int     `query:"long_window" json:"long_window" validate:"omitempty,gte=2,lte=500"`
	HorizonDays int     `query:"horizon_days" json:"horizon_days" validate:"omitempty,gte=1,lte=260"`
	Confidence  float64 `query:"confidence" json:"confidence" validate:"omitempty,gt=0,lt=1"`
}

// Apply returns a copy of cfg with the non-zero overrides set.
func (o Overrides) Apply(cfg EngineConfig) EngineConfig {
	if o.RSIWindow > 0 {
		cfg.Indicators.RSIWindow = o.RSIWindow
	}
	if o.ShortWindow > 0 {
		cfg.Indicators.ShortWindow = o.ShortWindow
	}
	if o.LongWindow > 0 {
		cfg.Indicators.LongWindow = o.LongWindow
	}
	if o.HorizonDays > 0 {
		cfg.Forecast.HorizonDays = o.HorizonDays
	}
	if o.Confidence > 0 {
		cfg.Forecast.Confidence = o.Confidence
	}
	return cfg
}
