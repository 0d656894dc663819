package models

// IndicatorSnapshot holds the indicator values computed at the latest observation.
type IndicatorSnapshot struct {
	RSI        float64 `json:"rsi"`
	SMAShort   float64 `json:"sma_short"`
	SMALong    float64 `json:"sma_long"`
	Volatility float64 `json:"volatility"` // daily, stdev of log returns
}

// Direction is the qualitative trend label.
type Direction string

const (
	Bullish Direction = "bullish"
	Bearish Direction = "bearish"
	Neutral Direction = "neutral"
)

// TrendBias is the classified trend with its per-step drift.
type TrendBias struct {
	Direction Direction `json:"direction"`
	Drift     float64   `json:"drift"`
}

// RSISignal labels the RSI zone.
type RSISignal string

const (
	RSIOverbought RSISignal = "Overbought"
	RSIOversold   RSISignal = "Oversold"
	RSINeutral    RSISignal = "Neutral"
)

// Signal returns the RSI zone for the given thresholds.
func (s IndicatorSnapshot) Signal(overbought, oversold float64) RSISignal {
	switch {
	case s.RSI >= overbought:
		return RSIOverbought
	case s.RSI <= oversold:
		return RSIOversold
	default:
		return RSINeutral
	}
}
