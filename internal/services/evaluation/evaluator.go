// Package evaluation scores forecast mean paths against realized closes.
package evaluation

import (
	"errors"
	"math"

	"FinCast/internal/domain/models"
)

// ErrLengthMismatch is returned when actual and predicted series differ in length or are empty.
var ErrLengthMismatch = errors.New("actual and predicted must be non-empty and equal length")

// Calculate computes error, fit and direction metrics for predicted against actual.
// Directional accuracy compares consecutive moves and needs at least two points.
func Calculate(actual, predicted []float64) (models.EvaluationMetrics, error) {
	n := len(actual)
	if n == 0 || n != len(predicted) {
		return models.EvaluationMetrics{}, ErrLengthMismatch
	}

	var sumAbs, sumSq, sumPct, sumErr, sumActual float64
	pctCount := 0
	for i := range actual {
		e := actual[i] - predicted[i]
		sumErr += e
		sumAbs += math.Abs(e)
		sumSq += e * e
		sumActual += actual[i]
		if actual[i] != 0 {
			sumPct += math.Abs(e / actual[i])
			pctCount++
		}
	}
	fn := float64(n)
	m := models.EvaluationMetrics{
		MAE:        sumAbs / fn,
		RMSE:       math.Sqrt(sumSq / fn),
		Bias:       -sumErr / fn,
		DataPoints: n,
	}
	if pctCount > 0 {
		m.MAPE = sumPct / float64(pctCount) * 100
	}

	mean := sumActual / fn
	var ssTot float64
	for _, a := range actual {
		ssTot += (a - mean) * (a - mean)
	}
	if ssTot > 0 {
		m.R2 = 1 - sumSq/ssTot
	}
	if mean != 0 {
		m.NormalizedRMSE = m.RMSE / math.Abs(mean) * 100
		m.NormalizedMAE = m.MAE / math.Abs(mean) * 100
	}

	if n > 1 {
		hits := 0
		for i := 1; i < n; i++ {
			if sign(actual[i]-actual[i-1]) == sign(predicted[i]-predicted[i-1]) {
				hits++
			}
		}
		m.DirectionalAccuracy = float64(hits) / float64(n-1) * 100
	}
	m.Quality = Quality(m)
	return m, nil
}

// Quality maps MAPE, directional accuracy and R² to a coarse label.
func Quality(m models.EvaluationMetrics) string {
	switch {
	case m.MAPE < 5 && m.DirectionalAccuracy > 75 && m.R2 > 0.7:
		return "Excellent"
	case m.MAPE < 10 && m.DirectionalAccuracy > 65 && m.R2 > 0.5:
		return "Good"
	case m.MAPE < 20 && m.DirectionalAccuracy > 55:
		return "Fair"
	default:
		return "Poor"
	}
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
