package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

func assertClose(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("%s: got %.10f want %.10f (tol %g)", name, got, want, tol)
	}
}

func historyOf(t *testing.T, closes ...float64) models.PriceHistory {
	t.Helper()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	obs := make([]models.PriceObservation, len(closes))
	for i, c := range closes {
		obs[i] = models.PriceObservation{Date: start.AddDate(0, 0, i), Close: c}
	}
	h, err := models.NewPriceHistory(obs)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	return h
}

func series(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

func defaultCfg() models.IndicatorConfig {
	return models.DefaultEngineConfig().Indicators
}

func TestRSIAllGainsIs100(t *testing.T) {
	h := historyOf(t, series(30, func(i int) float64 { return 100 + float64(i) })...)
	snap, err := NewEngine().Compute(h, defaultCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if snap.RSI != 100 {
		t.Fatalf("expected RSI 100, got %v", snap.RSI)
	}
}

func TestRSIAllLossesIs0(t *testing.T) {
	h := historyOf(t, series(30, func(i int) float64 { return 200 - float64(i) })...)
	snap, err := NewEngine().Compute(h, defaultCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	assertClose(t, "rsi", snap.RSI, 0, 1e-12)
}

func TestRSIBalancedIs50(t *testing.T) {
	// alternating +1/-1 gives equal gain and loss totals over an even window
	h := historyOf(t, series(30, func(i int) float64 { return 100 + float64(i%2) })...)
	snap, err := NewEngine().Compute(h, defaultCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	assertClose(t, "rsi", snap.RSI, 50, 1e-9)
}

func TestRSIHandCalculated(t *testing.T) {
	closes := []float64{10, 11, 10.5, 11.5, 11}
	// diffs: +1, -0.5, +1, -0.5 -> G=2/4, L=1/4, RS=2
	assertClose(t, "rsi", RSI(closes, 4), 100-100/3.0, 1e-12)
}

func TestRSIRangeProperty(t *testing.T) {
	cases := [][]float64{
		series(40, func(i int) float64 { return 50 + 10*math.Sin(float64(i)) }),
		series(40, func(i int) float64 { return 1 + float64(i*i%7) }),
		series(40, func(i int) float64 { return 1000 / float64(i+1) }),
	}
	for i, c := range cases {
		snap, err := NewEngine().Compute(historyOf(t, c...), defaultCfg())
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if snap.RSI < 0 || snap.RSI > 100 {
			t.Fatalf("case %d: RSI out of range: %v", i, snap.RSI)
		}
	}
}

func TestFlatHistory(t *testing.T) {
	h := historyOf(t, series(30, func(int) float64 { return 100 })...)
	snap, err := NewEngine().Compute(h, defaultCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if snap.RSI != 50 {
		t.Fatalf("flat RSI: got %v want 50", snap.RSI)
	}
	if snap.Volatility != 0 {
		t.Fatalf("flat volatility: got %v want 0", snap.Volatility)
	}
	if snap.SMAShort != 100 || snap.SMALong != 100 {
		t.Fatalf("flat SMA: got %v/%v", snap.SMAShort, snap.SMALong)
	}
}

func TestSMA(t *testing.T) {
	closes := series(25, func(i int) float64 { return float64(i + 1) })
	h := historyOf(t, closes...)
	snap, err := NewEngine().Compute(h, defaultCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// last 5 of 1..25 -> 21..25, last 20 -> 6..25
	assertClose(t, "sma short", snap.SMAShort, 23, 1e-12)
	assertClose(t, "sma long", snap.SMALong, 15.5, 1e-12)
}

func TestRealizedVolatilityKnownValue(t *testing.T) {
	rets := []float64{0.01, -0.01, 0.01, -0.01}
	// mean 0, sum of squares 4e-4, sample variance 4e-4/3
	assertClose(t, "vol", RealizedVolatility(rets, 0), math.Sqrt(4e-4/3), 1e-15)
	// trailing window of 2: {0.01,-0.01}, variance 2e-4/1
	assertClose(t, "vol window", RealizedVolatility(rets, 2), math.Sqrt(2e-4), 1e-15)
}

func TestVolatilityIsBoundedWindow(t *testing.T) {
	// a violent early regime must not leak into a 30-return window
	closes := append(series(20, func(i int) float64 { return 100 * math.Pow(2, float64(i%2)) }),
		series(40, func(i int) float64 { return 100 * math.Pow(1.01, float64(i)) })...)
	snap, err := NewEngine().Compute(historyOf(t, closes...), defaultCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	assertClose(t, "vol", snap.Volatility, 0, 1e-12)
}

func TestInsufficientHistoryBoundary(t *testing.T) {
	cfg := defaultCfg()
	short := historyOf(t, series(cfg.LongWindow, func(i int) float64 { return 100 + float64(i) })...)
	if _, err := NewEngine().Compute(short, cfg); !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory for %d observations, got %v", cfg.LongWindow, err)
	}
	enough := historyOf(t, series(cfg.LongWindow+1, func(i int) float64 { return 100 + float64(i) })...)
	if _, err := NewEngine().Compute(enough, cfg); err != nil {
		t.Fatalf("expected success for %d observations, got %v", cfg.LongWindow+1, err)
	}
}

func TestEmptyHistory(t *testing.T) {
	if _, err := NewEngine().Compute(models.PriceHistory{}, defaultCfg()); !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestInvalidWindows(t *testing.T) {
	cfg := defaultCfg()
	cfg.RSIWindow = 0
	h := historyOf(t, series(30, func(i int) float64 { return 100 + float64(i) })...)
	if _, err := NewEngine().Compute(h, cfg); !errors.Is(err, models.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSingleReturnVolatilityWindowRejected(t *testing.T) {
	// a one-return window has no sample deviation and would report an oscillating series as riskless
	cfg := defaultCfg()
	cfg.VolatilityWindow = 1
	h := historyOf(t, series(40, func(i int) float64 { return 100 + 20*float64(i%2) })...)
	if _, err := NewEngine().Compute(h, cfg); !errors.Is(err, models.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	cfg.VolatilityWindow = 2
	snap, err := NewEngine().Compute(h, cfg)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	assertClose(t, "vol", snap.Volatility, math.Sqrt2*math.Log(1.2), 1e-12)
}

func TestDegenerateWindowsRejected(t *testing.T) {
	cases := map[string]models.IndicatorConfig{
		"rsi 1":     {RSIWindow: 1, ShortWindow: 1, LongWindow: 2},
		"long 1":    {RSIWindow: 2, ShortWindow: 1, LongWindow: 1},
		"short 0":   {RSIWindow: 2, ShortWindow: 0, LongWindow: 2},
		"all ones":  {RSIWindow: 1, ShortWindow: 1, LongWindow: 1},
		"vol below": {RSIWindow: 2, ShortWindow: 1, LongWindow: 2, VolatilityWindow: -1},
	}
	h := historyOf(t, 10, 11, 12, 13)
	for name, cfg := range cases {
		if _, err := NewEngine().Compute(h, cfg); !errors.Is(err, models.ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestSmallestWindowsBoundary(t *testing.T) {
	cfg := models.IndicatorConfig{RSIWindow: 2, ShortWindow: 1, LongWindow: 2}
	if _, err := NewEngine().Compute(historyOf(t, 10, 11), cfg); !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory for 2 observations, got %v", err)
	}
	snap, err := NewEngine().Compute(historyOf(t, 10, 11, 10), cfg)
	if err != nil {
		t.Fatalf("expected success for 3 observations, got %v", err)
	}
	if snap.Volatility <= 0 || snap.RSI != 50 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	h := historyOf(t, series(60, func(i int) float64 { return 50 + 5*math.Cos(float64(i)/3) })...)
	a, err := NewEngine().Compute(h, defaultCfg())
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	b, _ := NewEngine().Compute(h, defaultCfg())
	if a != b {
		t.Fatalf("expected identical snapshots, got %+v and %+v", a, b)
	}
}
