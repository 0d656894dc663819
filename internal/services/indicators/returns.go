package indicators

import "math"

// LogReturns computes r_t = ln(C_t / C_{t-1}).
// It returns a slice of length len(closes)-1, or nil if insufficient data.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		out = append(out, math.Log(closes[i]/closes[i-1]))
	}
	return out
}

// RealizedVolatility is the sample standard deviation of the trailing window of returns.
// window <= 0 or window > len(returns) uses every return. Fewer than two returns yields 0.
// The value is per bar; it is not annualized.
func RealizedVolatility(returns []float64, window int) float64 {
	if window <= 0 || window > len(returns) {
		window = len(returns)
	}
	if window < 2 {
		return 0
	}
	sum := 0.0
	for i := len(returns) - window; i < len(returns); i++ {
		sum += returns[i]
	}
	n := float64(window)
	mean := sum / n
	ss := 0.0
	for i := len(returns) - window; i < len(returns); i++ {
		d := returns[i] - mean
		ss += d * d
	}
	return math.Sqrt(ss / (n - 1))
}

// SMA is the arithmetic mean of the trailing window of xs. It assumes 0 < window <= len(xs).
func SMA(xs []float64, window int) float64 {
	sum := 0.0
	for _, x := range xs[len(xs)-window:] {
		sum += x
	}
	return sum / float64(window)
}

// RSI uses the simple average of gains and absolute losses over the trailing window of
// close-to-close differences. It needs window+1 closes.
// No losses gives 100, except a window without any movement, which gives 50.
func RSI(closes []float64, window int) float64 {
	var gains, losses float64
	for i := len(closes) - window; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}
	avgGain := gains / float64(window)
	avgLoss := losses / float64(window)
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
