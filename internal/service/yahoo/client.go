package yahoo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	_ "time/tzdata" // exchange zones must resolve in slim images

	"FinCast/internal/domain/models"
	drepo "FinCast/internal/domain/repository"
	applogger "FinCast/pkg/logger"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"
)

// Bar is the subset of a Yahoo chart bar the forecaster needs.
// Loc is the exchange time zone that decides the session date; nil means UTC.
type Bar struct {
	Timestamp int64
	Close     decimal.Decimal
	Loc       *time.Location
}

// FetchFunc loads daily bars for [start, end].
type FetchFunc func(symbol string, start, end time.Time) ([]Bar, error)

// Client implements a PriceSource backed by the Yahoo Finance chart API.
type Client struct {
	fetch FetchFunc
	l     *applogger.Logger
}

// New creates a Yahoo PriceSource. A nil fetch uses the live chart API.
func New(fetch FetchFunc, l *applogger.Logger) drepo.PriceSource {
	if fetch == nil {
		fetch = chartBars
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Client{fetch: fetch, l: l}
}

// History fetches daily closes. The chart iterator is not cancellable, so the
// call returns early on ctx expiry and the fetch finishes in the background.
func (c *Client) History(ctx context.Context, symbol string, from, to time.Time) (models.PriceHistory, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return models.PriceHistory{}, fmt.Errorf("%w: empty symbol", models.ErrSymbolNotFound)
	}

	type result struct {
		bars []Bar
		err  error
	}
	done := make(chan result, 1)
	go func() {
		bars, err := c.fetch(symbol, from, to)
		done <- result{bars: bars, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return models.PriceHistory{}, fmt.Errorf("yahoo %s: %w", symbol, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return models.PriceHistory{}, fmt.Errorf("yahoo %s: %w", symbol, res.err)
	}

	h, dropped, err := BarsToHistory(res.bars)
	if err != nil {
		return models.PriceHistory{}, fmt.Errorf("yahoo %s: %w", symbol, err)
	}
	if dropped > 0 {
		c.l.Debug("yahoo bars dropped", applogger.String("symbol", symbol), applogger.Int("dropped", dropped))
	}
	return h, nil
}

// BarsToHistory sorts bars by exchange-local day, keeps the last bar of each day and skips
// non-positive closes.
// It reports how many bars were discarded.
func BarsToHistory(bars []Bar) (models.PriceHistory, int, error) {
	byDay := make(map[time.Time]float64, len(bars))
	dropped := 0
	for _, b := range bars {
		v, _ := b.Close.Float64()
		if v <= 0 {
			dropped++
			continue
		}
		loc := b.Loc
		if loc == nil {
			loc = time.UTC
		}
		d := models.TruncateDay(time.Unix(b.Timestamp, 0).In(loc))
		if _, seen := byDay[d]; seen {
			dropped++
		}
		byDay[d] = v
	}
	if len(byDay) == 0 {
		return models.PriceHistory{}, dropped, models.ErrSymbolNotFound
	}

	obs := make([]models.PriceObservation, 0, len(byDay))
	for d, v := range byDay {
		obs = append(obs, models.PriceObservation{Date: d, Close: v})
	}
	sort.Slice(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })

	h, err := models.NewPriceHistory(obs)
	return h, dropped, err
}

func chartBars(symbol string, start, end time.Time) ([]Bar, error) {
	iter := chart.Get(&chart.Params{
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})
	var bars []Bar
	for iter.Next() {
		bar := iter.Bar()
		bars = append(bars, Bar{Timestamp: int64(bar.Timestamp), Close: bar.Close})
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	meta := iter.Meta()
	loc := ExchangeLocation(meta.ExchangeTimezoneName, meta.Gmtoffset)
	for i := range bars {
		bars[i].Loc = loc
	}
	return bars, nil
}

// ExchangeLocation resolves the exchange zone from chart metadata. An unknown name falls
// back to the fixed GMT offset in seconds, and a missing offset to UTC.
func ExchangeLocation(name string, gmtOffset int) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if gmtOffset != 0 {
		return time.FixedZone("", gmtOffset)
	}
	return time.UTC
}
