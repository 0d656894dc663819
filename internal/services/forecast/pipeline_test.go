package forecast

import (
	"errors"
	"testing"
	"time"

	"FinCast/internal/domain/models"
)

func dailyHistory(t *testing.T, closes []float64) models.PriceHistory {
	t.Helper()
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
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

func TestRunRisingSeries(t *testing.T) {
	closes := make([]float64, 25)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	res, err := NewPipeline(nil).Run("aapl", dailyHistory(t, closes), models.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Symbol != "AAPL" {
		t.Errorf("symbol: got %q", res.Symbol)
	}
	if res.CurrentPrice != 124 {
		t.Errorf("current price: got %v want 124", res.CurrentPrice)
	}
	if res.Indicators.RSI != 100 {
		t.Errorf("rsi: got %v want 100", res.Indicators.RSI)
	}
	if res.RSISignal != models.RSIOverbought {
		t.Errorf("rsi signal: got %s", res.RSISignal)
	}
	if res.Trend() != models.Bullish {
		t.Fatalf("trend: got %s want bullish", res.Trend())
	}
	prev := res.CurrentPrice
	for i, pt := range res.Path {
		if pt.Mean < prev {
			t.Fatalf("mean path decreased at %d: %v < %v", i, pt.Mean, prev)
		}
		prev = pt.Mean
	}
	if res.TargetPrice != res.Path[len(res.Path)-1].Mean {
		t.Fatalf("target %v differs from last mean %v", res.TargetPrice, res.Path[len(res.Path)-1].Mean)
	}
	if len(res.History) != 25 {
		t.Fatalf("history echo: got %d", len(res.History))
	}
}

func TestRunFlatSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	res, err := NewPipeline(nil).Run("FLAT", dailyHistory(t, closes), models.DefaultEngineConfig())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Trend() != models.Neutral || res.Bias.Drift != 0 {
		t.Fatalf("expected neutral zero drift, got %+v", res.Bias)
	}
	if res.Indicators.RSI != 50 {
		t.Fatalf("rsi: got %v want 50", res.Indicators.RSI)
	}
	for i, pt := range res.Path {
		if pt.Mean != 100 || pt.Lower != 100 || pt.Upper != 100 {
			t.Fatalf("point %d: expected flat 100 band, got %+v", i, pt)
		}
	}
	if res.TargetPrice != 100 {
		t.Fatalf("target: got %v", res.TargetPrice)
	}
}

func TestRunHistoryEchoIsBounded(t *testing.T) {
	closes := make([]float64, 90)
	for i := range closes {
		closes[i] = 50 + float64(i%7)
	}
	cfg := models.DefaultEngineConfig()
	res, err := NewPipeline(nil).Run("X", dailyHistory(t, closes), cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.History) != cfg.HistoryEcho {
		t.Fatalf("history echo: got %d want %d", len(res.History), cfg.HistoryEcho)
	}
	last, _ := dailyHistory(t, closes).Last()
	if !res.History[len(res.History)-1].Date.Equal(last.Date) {
		t.Fatalf("history echo must end at the last observation")
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	h := dailyHistory(t, closes)

	cfg := models.DefaultEngineConfig()
	cfg.Forecast.HorizonDays = 0
	if _, err := NewPipeline(nil).Run("X", h, cfg); !errors.Is(err, models.ErrInvalidHorizon) {
		t.Fatalf("expected ErrInvalidHorizon, got %v", err)
	}

	cfg = models.DefaultEngineConfig()
	cfg.Forecast.Confidence = 1.5
	if _, err := NewPipeline(nil).Run("X", h, cfg); !errors.Is(err, models.ErrInvalidConfidence) {
		t.Fatalf("expected ErrInvalidConfidence, got %v", err)
	}

	if _, err := NewPipeline(nil).Run("X", dailyHistory(t, closes[:20]), models.DefaultEngineConfig()); !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestBuildRequiresPath(t *testing.T) {
	h := dailyHistory(t, []float64{1, 2, 3})
	if _, err := Build("X", h, models.IndicatorSnapshot{}, models.TrendBias{}, nil, models.DefaultEngineConfig()); !errors.Is(err, models.ErrInvalidHorizon) {
		t.Fatalf("expected ErrInvalidHorizon, got %v", err)
	}
	if _, err := Build("X", models.PriceHistory{}, models.IndicatorSnapshot{}, models.TrendBias{}, []models.ForecastPoint{{Mean: 1}}, models.DefaultEngineConfig()); !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}
