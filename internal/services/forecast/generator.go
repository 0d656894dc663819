// Package forecast projects a deterministic mean path with a widening confidence band.
package forecast

import (
	"fmt"
	"math"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
)

// DefaultPriceFloor keeps band edges strictly positive.
const DefaultPriceFloor = 0.01

// Generator is safe for concurrent use; the calendar is read-only after construction.
type Generator struct {
	cal *Calendar
}

func NewGenerator(cal *Calendar) *Generator {
	if cal == nil {
		cal = WeekdayCalendar()
	}
	return &Generator{cal: cal}
}

// ZScore returns the two-sided standard normal quantile for confidence c in (0, 1).
func ZScore(c float64) float64 {
	return math.Sqrt2 * math.Erfinv(c)
}

// Generate compounds the drift from the current price. The band at step t is
// mean*(1 ± vol*z*sqrt(t)); the fraction grows with sqrt(t) while the absolute width
// follows the mean, so it can narrow along a falling path. Lower edges and the mean are
// floored at PriceFloor.
func (g *Generator) Generate(p domsvc.GenerateParams) ([]models.ForecastPoint, error) {
	if p.HorizonDays <= 0 {
		return nil, fmt.Errorf("%w: %d", models.ErrInvalidHorizon, p.HorizonDays)
	}
	if math.IsNaN(p.Confidence) || p.Confidence <= 0 || p.Confidence >= 1 {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidConfidence, p.Confidence)
	}
	if math.IsNaN(p.CurrentPrice) || math.IsInf(p.CurrentPrice, 0) || p.CurrentPrice <= 0 {
		return nil, fmt.Errorf("%w: current price %v", models.ErrMalformedHistory, p.CurrentPrice)
	}
	if math.IsNaN(p.Volatility) || math.IsInf(p.Volatility, 0) || p.Volatility < 0 {
		return nil, fmt.Errorf("%w: volatility %v", models.ErrMalformedHistory, p.Volatility)
	}
	if math.IsNaN(p.Bias.Drift) || math.IsInf(p.Bias.Drift, 0) {
		return nil, fmt.Errorf("%w: drift %v", models.ErrMalformedHistory, p.Bias.Drift)
	}
	floor := p.PriceFloor
	if floor <= 0 {
		floor = DefaultPriceFloor
	}

	z := ZScore(p.Confidence)
	dates := g.cal.Days(p.LastDate, p.HorizonDays)
	out := make([]models.ForecastPoint, p.HorizonDays)
	mean := p.CurrentPrice
	for i := range out {
		mean = math.Max(mean*(1+p.Bias.Drift), floor)
		frac := p.Volatility * z * math.Sqrt(float64(i+1))
		out[i] = models.ForecastPoint{
			Date:  dates[i],
			Mean:  mean,
			Lower: math.Max(mean*(1-frac), floor),
			Upper: mean * (1 + frac),
		}
	}
	return out, nil
}

var _ domsvc.ForecastGenerator = (*Generator)(nil)
