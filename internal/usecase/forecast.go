package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"FinCast/internal/domain/models"
	domrepo "FinCast/internal/domain/repository"
	"FinCast/internal/services/evaluation"
	"FinCast/internal/services/forecast"
	applogger "FinCast/pkg/logger"
)

// ForecastUseCaseOption configures ForecastUseCase.
type ForecastUseCaseOption func(*ForecastUseCase)

// WithSinks adds destinations for every forecast produced by Analyze.
func WithSinks(sinks ...domrepo.ForecastSink) ForecastUseCaseOption {
	return func(uc *ForecastUseCase) {
		for _, s := range sinks {
			if s != nil {
				uc.sinks = append(uc.sinks, s)
			}
		}
	}
}

// WithLookbackDays sets how many calendar days of history are fetched.
func WithLookbackDays(days int) ForecastUseCaseOption {
	return func(uc *ForecastUseCase) {
		if days > 0 {
			uc.lookback = days
		}
	}
}

// WithTimeout bounds each fetch-and-analyze call.
func WithTimeout(d time.Duration) ForecastUseCaseOption {
	return func(uc *ForecastUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ForecastUseCaseOption {
	return func(uc *ForecastUseCase) { uc.now = now }
}

// ForecastUseCase fetches a history, runs the pipeline and fans the result out to sinks.
type ForecastUseCase struct {
	source   domrepo.PriceSource
	pipeline *forecast.Pipeline
	base     models.EngineConfig
	metrics  domrepo.Metrics
	sinks    []domrepo.ForecastSink
	lookback int
	timeout  time.Duration
	now      func() time.Time
	l        *applogger.Logger
}

func NewForecastUseCase(
	source domrepo.PriceSource,
	pipeline *forecast.Pipeline,
	base models.EngineConfig,
	metrics domrepo.Metrics,
	l *applogger.Logger,
	opts ...ForecastUseCaseOption,
) *ForecastUseCase {
	if l == nil {
		l = applogger.Nop()
	}
	uc := &ForecastUseCase{
		source:   source,
		pipeline: pipeline,
		base:     base,
		metrics:  metrics,
		lookback: 365,
		timeout:  20 * time.Second,
		now:      time.Now,
		l:        l,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Config returns the base engine configuration.
func (uc *ForecastUseCase) Config() models.EngineConfig { return uc.base }

// Analyze forecasts symbol from its fetched history and publishes the result.
func (uc *ForecastUseCase) Analyze(ctx context.Context, symbol string, ov models.Overrides) (models.ForecastResult, error) {
	start := time.Now()
	symbol = normalizeSymbol(symbol)
	if symbol == "" {
		return models.ForecastResult{}, uc.fail("analyze", symbol, fmt.Errorf("%w: empty symbol", models.ErrSymbolNotFound))
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	h, err := uc.fetch(ctx, symbol)
	if err != nil {
		return models.ForecastResult{}, uc.fail("analyze", symbol, err)
	}
	if fresh := h.Freshness(uc.now()); fresh == "outdated" {
		last, _ := h.Last()
		uc.l.Warn("history is outdated",
			applogger.String("symbol", symbol),
			applogger.Date("last_close", last.Date),
		)
	}

	res, err := uc.pipeline.Run(symbol, h, ov.Apply(uc.base))
	if err != nil {
		return models.ForecastResult{}, uc.fail("analyze", symbol, err)
	}
	uc.record(res, "analyze", start)
	uc.publish(ctx, res)
	return res, nil
}

// AnalyzeHistory forecasts a caller-supplied history. Results are not published.
func (uc *ForecastUseCase) AnalyzeHistory(symbol string, h models.PriceHistory, ov models.Overrides) (models.ForecastResult, error) {
	start := time.Now()
	res, err := uc.pipeline.Run(symbol, h, ov.Apply(uc.base))
	if err != nil {
		return models.ForecastResult{}, uc.fail("analyze_history", symbol, err)
	}
	uc.record(res, "analyze_history", start)
	return res, nil
}

// Evaluate hides the last holdout closes, forecasts holdout business days from the rest
// and scores the mean path against the hidden closes step by step.
func (uc *ForecastUseCase) Evaluate(ctx context.Context, symbol string, holdout int, ov models.Overrides) (models.EvaluationReport, error) {
	start := time.Now()
	symbol = normalizeSymbol(symbol)
	if holdout < 1 {
		return models.EvaluationReport{}, fmt.Errorf("%w: holdout %d", models.ErrInvalidHorizon, holdout)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	h, err := uc.fetch(ctx, symbol)
	if err != nil {
		return models.EvaluationReport{}, uc.fail("evaluate", symbol, err)
	}
	train, actual := h.Split(holdout)
	if len(actual) < holdout {
		return models.EvaluationReport{}, uc.fail("evaluate", symbol,
			fmt.Errorf("%w: %d closes cannot cover a holdout of %d", models.ErrInsufficientHistory, h.Len(), holdout))
	}

	cfg := ov.Apply(uc.base)
	cfg.Forecast.HorizonDays = holdout
	res, err := uc.pipeline.Run(symbol, train, cfg)
	if err != nil {
		return models.EvaluationReport{}, uc.fail("evaluate", symbol, err)
	}

	act := make([]float64, len(actual))
	pred := make([]float64, len(actual))
	for i := range actual {
		act[i] = actual[i].Close
		pred[i] = res.Path[i].Mean
	}
	m, err := evaluation.Calculate(act, pred)
	if err != nil {
		return models.EvaluationReport{}, uc.fail("evaluate", symbol, err)
	}
	uc.metrics.RecordLatency("evaluate", time.Since(start).Seconds())
	uc.l.Info("evaluation complete",
		applogger.String("symbol", symbol),
		applogger.Int("holdout", holdout),
		applogger.Float64("mape", m.MAPE),
		applogger.String("quality", m.Quality),
	)
	return models.EvaluationReport{
		Symbol:    symbol,
		Holdout:   holdout,
		Metrics:   m,
		Actual:    actual,
		Predicted: res.Path,
	}, nil
}

func (uc *ForecastUseCase) fetch(ctx context.Context, symbol string) (models.PriceHistory, error) {
	to := uc.now().UTC()
	from := to.AddDate(0, 0, -uc.lookback)
	fetchStart := time.Now()
	h, err := uc.source.History(ctx, symbol, from, to)
	uc.metrics.RecordLatency("fetch_history", time.Since(fetchStart).Seconds())
	return h, err
}

func (uc *ForecastUseCase) record(res models.ForecastResult, op string, start time.Time) {
	uc.metrics.RecordForecast(res.Symbol, res.Trend())
	uc.metrics.RecordTargetPrice(res.Symbol, res.TargetPrice)
	uc.metrics.RecordLatency(op, time.Since(start).Seconds())
	uc.l.Info("forecast complete",
		applogger.String("symbol", res.Symbol),
		applogger.String("trend", string(res.Trend())),
		applogger.Float64("current_price", res.CurrentPrice),
		applogger.Float64("target_price", res.TargetPrice),
		applogger.Int("horizon", len(res.Path)),
		applogger.Duration("took", time.Since(start)),
	)
}

func (uc *ForecastUseCase) fail(op, symbol string, err error) error {
	kind := models.ErrorKind(err)
	uc.metrics.RecordError(kind)
	log := uc.l.Error
	if models.IsInputError(err) {
		log = uc.l.Warn
	}
	log(op+" failed",
		applogger.String("symbol", symbol),
		applogger.String("kind", kind),
		applogger.Error(err),
	)
	return err
}

// publish delivers res to every sink concurrently. Sink failures are logged, never returned.
func (uc *ForecastUseCase) publish(ctx context.Context, res models.ForecastResult) {
	if len(uc.sinks) == 0 {
		return
	}
	var wg sync.WaitGroup
	for _, s := range uc.sinks {
		wg.Add(1)
		go func(s domrepo.ForecastSink) {
			defer wg.Done()
			if err := s.Publish(ctx, res); err != nil {
				uc.metrics.RecordError("sink_" + s.Name())
				uc.l.Warn("forecast sink failed",
					applogger.String("sink", s.Name()),
					applogger.String("symbol", res.Symbol),
					applogger.Error(err),
				)
			}
		}(s)
	}
	wg.Wait()
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
