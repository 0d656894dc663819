package util

import (
	"reflect"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-10-10", " 2024-10-10 ", "2024-10-10T15:04:05Z"} {
		got, ok := ParseDate(s)
		if !ok {
			t.Fatalf("%q: expected ok", s)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: got %v", s, got)
		}
	}
	if _, ok := ParseDate("10/10/2024"); ok {
		t.Fatalf("expected failure for non-ISO date")
	}
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected failure for empty input")
	}
}

func TestFormatDates(t *testing.T) {
	got := FormatDates([]time.Time{time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)})
	if !reflect.DeepEqual(got, []string{"2024-01-08"}) {
		t.Fatalf("unexpected %v", got)
	}
}

func TestParseSymbols(t *testing.T) {
	got := ParseSymbols(" aapl,MSFT,,aapl , tsla")
	if !reflect.DeepEqual(got, []string{"AAPL", "MSFT", "TSLA"}) {
		t.Fatalf("unexpected %v", got)
	}
	if ParseSymbols("") != nil {
		t.Fatalf("expected nil for empty input")
	}
}

func TestParseIntDefault(t *testing.T) {
	if ParseIntDefault("12", 3) != 12 || ParseIntDefault("x", 3) != 3 || ParseIntDefault("", 3) != 3 {
		t.Fatalf("unexpected ParseIntDefault results")
	}
}
