package usecase

import (
	"context"
	"sort"
	"sync"

	"FinCast/internal/domain/models"
)

// Analyzer is the single-symbol surface BatchUseCase fans out over.
type Analyzer interface {
	Analyze(ctx context.Context, symbol string, ov models.Overrides) (models.ForecastResult, error)
}

// BatchUseCase analyzes several symbols concurrently with bounded parallelism.
type BatchUseCase struct {
	analyzer    Analyzer
	parallelism int
}

func NewBatchUseCase(analyzer Analyzer, parallelism int) *BatchUseCase {
	if parallelism <= 0 {
		parallelism = 4
	}
	return &BatchUseCase{analyzer: analyzer, parallelism: parallelism}
}

// AnalyzeMany returns results in the order symbols were given; failures are keyed by symbol.
func (uc *BatchUseCase) AnalyzeMany(ctx context.Context, symbols []string, ov models.Overrides) models.BatchResult {
	type item struct {
		idx int
		sym string
		res models.ForecastResult
		err error
	}
	ch := make(chan item, len(symbols))
	sem := make(chan struct{}, uc.parallelism)
	var wg sync.WaitGroup

	for i, s := range symbols {
		wg.Add(1)
		go func(i int, s string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				ch <- item{idx: i, sym: s, err: ctx.Err()}
				return
			}
			defer func() { <-sem }()
			res, err := uc.analyzer.Analyze(ctx, s, ov)
			ch <- item{idx: i, sym: s, res: res, err: err}
		}(i, s)
	}
	go func() { wg.Wait(); close(ch) }()

	var ok []item
	out := models.BatchResult{Failures: map[string]string{}}
	for it := range ch {
		if it.err != nil {
			out.Failures[normalizeSymbol(it.sym)] = it.err.Error()
			continue
		}
		ok = append(ok, it)
	}
	sort.Slice(ok, func(a, b int) bool { return ok[a].idx < ok[b].idx })
	out.Results = make([]models.ForecastResult, len(ok))
	for i, it := range ok {
		out.Results[i] = it.res
	}
	if len(out.Failures) == 0 {
		out.Failures = nil
	}
	return out
}
