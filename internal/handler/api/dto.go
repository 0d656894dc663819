package api

import (
	"strings"
	"time"

	"FinCast/internal/domain/models"

	"github.com/shopspring/decimal"
)

// round rounds half away from zero at places decimals.
func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

type ObservationDTO struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

type PointDTO struct {
	Date  string  `json:"date"`
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

type IndicatorsDTO struct {
	RSI        float64 `json:"rsi"`
	SMAShort   float64 `json:"sma_short"`
	SMALong    float64 `json:"sma_long"`
	Volatility float64 `json:"volatility"`
}

// ForecastDTO is the /api/forecast payload. Prices and the top-level rsi are rounded to 2 places, indicators to 4.
type ForecastDTO struct {
	Symbol             string           `json:"symbol"`
	LastDate           string           `json:"last_date"`
	Freshness          string           `json:"freshness"`
	CurrentPrice       float64          `json:"current_price"`
	TargetPrice        float64          `json:"target_price"`
	PriceChangePercent float64          `json:"price_change_percent"`
	Trend              models.Direction `json:"trend"`
	Drift              float64          `json:"drift"`
	RSI                float64          `json:"rsi"`
	RSISignal          models.RSISignal `json:"rsi_signal"`
	Indicators         IndicatorsDTO    `json:"indicators"`
	Historical         []ObservationDTO `json:"historical"`
	Forecast           []PointDTO       `json:"forecast"`
}

func toForecastDTO(r models.ForecastResult, now time.Time) ForecastDTO {
	out := ForecastDTO{
		Symbol:             r.Symbol,
		LastDate:           r.AsOf.Format(models.DateLayout),
		Freshness:          models.FreshnessLabel(models.DaysBetween(r.AsOf, now)),
		CurrentPrice:       round(r.CurrentPrice, 2),
		TargetPrice:        round(r.TargetPrice, 2),
		PriceChangePercent: round(r.PriceChangePercent(), 2),
		Trend:              r.Trend(),
		Drift:              round(r.Bias.Drift, 6),
		RSI:                round(r.Indicators.RSI, 2),
		RSISignal:          r.RSISignal,
		Indicators: IndicatorsDTO{
			RSI:        round(r.Indicators.RSI, 4),
			SMAShort:   round(r.Indicators.SMAShort, 4),
			SMALong:    round(r.Indicators.SMALong, 4),
			Volatility: round(r.Indicators.Volatility, 6),
		},
		Historical: make([]ObservationDTO, len(r.History)),
		Forecast:   make([]PointDTO, len(r.Path)),
	}
	for i, o := range r.History {
		out.Historical[i] = ObservationDTO{Date: o.Date.Format(models.DateLayout), Close: round(o.Close, 2)}
	}
	for i, p := range r.Path {
		out.Forecast[i] = PointDTO{
			Date:  p.Date.Format(models.DateLayout),
			Mean:  round(p.Mean, 2),
			Lower: round(p.Lower, 2),
			Upper: round(p.Upper, 2),
		}
	}
	return out
}

type SeriesDTO struct {
	Dates  []string  `json:"dates"`
	Prices []float64 `json:"prices"`
}

type BandDTO struct {
	Dates     []string  `json:"dates"`
	Prices    []float64 `json:"prices"`
	UpperBand []float64 `json:"upper_band"`
	LowerBand []float64 `json:"lower_band"`
}

// AnalyzeDTO is the dashboard payload served by /analyze/:symbol.
// Volatility is the daily return deviation in percent.
type AnalyzeDTO struct {
	Symbol             string           `json:"symbol"`
	CurrentPrice       float64          `json:"current_price"`
	TargetPrice        float64          `json:"target_price"`
	PriceChangePercent float64          `json:"price_change_percent"`
	RSI                float64          `json:"rsi"`
	RSISignal          models.RSISignal `json:"rsi_signal"`
	Trend              string           `json:"trend"`
	Volatility         float64          `json:"volatility"`
	Historical         SeriesDTO        `json:"historical"`
	Forecast           BandDTO          `json:"forecast"`
}

func toAnalyzeDTO(r models.ForecastResult) AnalyzeDTO {
	out := AnalyzeDTO{
		Symbol:             r.Symbol,
		CurrentPrice:       round(r.CurrentPrice, 2),
		TargetPrice:        round(r.TargetPrice, 2),
		PriceChangePercent: round(r.PriceChangePercent(), 1),
		RSI:                round(r.Indicators.RSI, 1),
		RSISignal:          r.RSISignal,
		Trend:              titleCase(string(r.Trend())),
		Volatility:         round(r.Indicators.Volatility*100, 1),
		Historical: SeriesDTO{
			Dates:  make([]string, len(r.History)),
			Prices: make([]float64, len(r.History)),
		},
		Forecast: BandDTO{
			Dates:     make([]string, len(r.Path)),
			Prices:    make([]float64, len(r.Path)),
			UpperBand: make([]float64, len(r.Path)),
			LowerBand: make([]float64, len(r.Path)),
		},
	}
	for i, o := range r.History {
		out.Historical.Dates[i] = o.Date.Format(models.DateLayout)
		out.Historical.Prices[i] = round(o.Close, 2)
	}
	for i, p := range r.Path {
		out.Forecast.Dates[i] = p.Date.Format(models.DateLayout)
		out.Forecast.Prices[i] = round(p.Mean, 2)
		out.Forecast.UpperBand[i] = round(p.Upper, 2)
		out.Forecast.LowerBand[i] = round(p.Lower, 2)
	}
	return out
}

type BatchDTO struct {
	Results  []ForecastDTO     `json:"results"`
	Failures map[string]string `json:"failures,omitempty"`
}

type EvaluationDTO struct {
	Symbol    string                   `json:"symbol"`
	Holdout   int                      `json:"holdout"`
	Metrics   models.EvaluationMetrics `json:"metrics"`
	Actual    []ObservationDTO         `json:"actual"`
	Predicted []PointDTO               `json:"predicted"`
}

func toEvaluationDTO(r models.EvaluationReport) EvaluationDTO {
	m := r.Metrics
	m.MAE, m.RMSE, m.R2, m.Bias = round(m.MAE, 4), round(m.RMSE, 4), round(m.R2, 4), round(m.Bias, 4)
	m.MAPE, m.DirectionalAccuracy = round(m.MAPE, 2), round(m.DirectionalAccuracy, 2)
	m.NormalizedRMSE, m.NormalizedMAE = round(m.NormalizedRMSE, 2), round(m.NormalizedMAE, 2)

	out := EvaluationDTO{
		Symbol:    r.Symbol,
		Holdout:   r.Holdout,
		Metrics:   m,
		Actual:    make([]ObservationDTO, len(r.Actual)),
		Predicted: make([]PointDTO, len(r.Predicted)),
	}
	for i, o := range r.Actual {
		out.Actual[i] = ObservationDTO{Date: o.Date.Format(models.DateLayout), Close: round(o.Close, 2)}
	}
	for i, p := range r.Predicted {
		out.Predicted[i] = PointDTO{Date: p.Date.Format(models.DateLayout), Mean: round(p.Mean, 2), Lower: round(p.Lower, 2), Upper: round(p.Upper, 2)}
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
