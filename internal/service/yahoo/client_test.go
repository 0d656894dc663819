package yahoo

import (
	"context"
	"errors"
	"testing"
	"time"

	"FinCast/internal/domain/models"

	"github.com/shopspring/decimal"
)

func ts(day string, hour int) int64 {
	d, _ := time.Parse(models.DateLayout, day)
	return d.Add(time.Duration(hour) * time.Hour).Unix()
}

func TestBarsToHistorySortsAndDedupes(t *testing.T) {
	bars := []Bar{
		{Timestamp: ts("2024-01-03", 14), Close: decimal.NewFromFloat(101)},
		{Timestamp: ts("2024-01-02", 14), Close: decimal.NewFromFloat(100)},
		{Timestamp: ts("2024-01-03", 20), Close: decimal.NewFromFloat(102)},
		{Timestamp: ts("2024-01-04", 14), Close: decimal.Zero},
	}
	h, dropped, err := BarsToHistory(bars)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if h.Len() != 2 || dropped != 2 {
		t.Fatalf("len=%d dropped=%d", h.Len(), dropped)
	}
	last, _ := h.Last()
	if last.Close != 102 || last.Date.Format(models.DateLayout) != "2024-01-03" {
		t.Fatalf("last = %+v", last)
	}
}

func TestBarsToHistoryUsesExchangeDay(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	// 10:00 AEDT on Monday 8 Jan is 23:00 UTC on Sunday 7 Jan
	bars := []Bar{
		{Timestamp: ts("2024-01-07", 23), Close: decimal.NewFromFloat(7.1), Loc: sydney},
		{Timestamp: ts("2024-01-08", 23), Close: decimal.NewFromFloat(7.2), Loc: sydney},
	}
	h, dropped, err := BarsToHistory(bars)
	if err != nil || dropped != 0 {
		t.Fatalf("convert: %v dropped=%d", err, dropped)
	}
	first := h.Observations()[0]
	if got := first.Date.Format(models.DateLayout); got != "2024-01-08" {
		t.Fatalf("first session %s, want 2024-01-08", got)
	}
	last, _ := h.Last()
	if got := last.Date.Format(models.DateLayout); got != "2024-01-09" {
		t.Fatalf("last session %s, want 2024-01-09", got)
	}
}

func TestExchangeLocation(t *testing.T) {
	if loc := ExchangeLocation("America/New_York", -18000); loc.String() != "America/New_York" {
		t.Fatalf("named zone: %s", loc)
	}
	at := time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC)
	if d := at.In(ExchangeLocation("Not/AZone", 11*3600)).Day(); d != 8 {
		t.Fatalf("offset fallback day %d", d)
	}
	if ExchangeLocation("", 0) != time.UTC {
		t.Fatalf("expected UTC without metadata")
	}
}

func TestBarsToHistoryEmpty(t *testing.T) {
	if _, _, err := BarsToHistory(nil); !errors.Is(err, models.ErrSymbolNotFound) {
		t.Fatalf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestHistoryUsesFetch(t *testing.T) {
	var gotSymbol string
	src := New(func(symbol string, _, _ time.Time) ([]Bar, error) {
		gotSymbol = symbol
		return []Bar{
			{Timestamp: ts("2024-01-02", 21), Close: decimal.NewFromFloat(10)},
			{Timestamp: ts("2024-01-03", 21), Close: decimal.NewFromFloat(11)},
		}, nil
	}, nil)

	h, err := src.History(context.Background(), " aapl ", time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if gotSymbol != "AAPL" || h.Len() != 2 {
		t.Fatalf("symbol=%q len=%d", gotSymbol, h.Len())
	}
}

func TestHistoryErrors(t *testing.T) {
	boom := errors.New("upstream down")
	src := New(func(string, time.Time, time.Time) ([]Bar, error) { return nil, boom }, nil)
	if _, err := src.History(context.Background(), "X", time.Time{}, time.Now()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped upstream error, got %v", err)
	}
	if _, err := src.History(context.Background(), "  ", time.Time{}, time.Now()); !errors.Is(err, models.ErrSymbolNotFound) {
		t.Fatalf("empty symbol should be not found, got %v", err)
	}

	block := make(chan struct{})
	defer close(block)
	slow := New(func(string, time.Time, time.Time) ([]Bar, error) { <-block; return nil, nil }, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := slow.History(ctx, "X", time.Time{}, time.Now()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
