package models

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the calendar-day layout used on every external surface.
const DateLayout = "2006-01-02"

// PriceObservation is one daily close.
type PriceObservation struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceHistory is an immutable, strictly date-ascending series of daily closes.
// The zero value is an empty history.
type PriceHistory struct {
	obs []PriceObservation
}

// NewPriceHistory validates observations and returns an immutable history.
// Dates are normalized to UTC midnight.
func NewPriceHistory(obs []PriceObservation) (PriceHistory, error) {
	if len(obs) == 0 {
		return PriceHistory{}, fmt.Errorf("%w: no observations", ErrMalformedHistory)
	}
	out := make([]PriceObservation, len(obs))
	for i, o := range obs {
		if math.IsNaN(o.Close) || math.IsInf(o.Close, 0) || o.Close <= 0 {
			return PriceHistory{}, fmt.Errorf("%w: close %v at index %d", ErrMalformedHistory, o.Close, i)
		}
		if o.Date.IsZero() {
			return PriceHistory{}, fmt.Errorf("%w: missing date at index %d", ErrMalformedHistory, i)
		}
		d := TruncateDay(o.Date)
		if i > 0 && !d.After(out[i-1].Date) {
			return PriceHistory{}, fmt.Errorf("%w: date %s not after %s",
				ErrMalformedHistory, d.Format(DateLayout), out[i-1].Date.Format(DateLayout))
		}
		out[i] = PriceObservation{Date: d, Close: o.Close}
	}
	return PriceHistory{obs: out}, nil
}

// Len returns the number of observations.
func (h PriceHistory) Len() int { return len(h.obs) }

// Observations returns a copy of the series.
func (h PriceHistory) Observations() []PriceObservation {
	out := make([]PriceObservation, len(h.obs))
	copy(out, h.obs)
	return out
}

// Closes returns a copy of the close prices in date order.
func (h PriceHistory) Closes() []float64 {
	out := make([]float64, len(h.obs))
	for i, o := range h.obs {
		out[i] = o.Close
	}
	return out
}

// Last returns the most recent observation.
func (h PriceHistory) Last() (PriceObservation, bool) {
	if len(h.obs) == 0 {
		return PriceObservation{}, false
	}
	return h.obs[len(h.obs)-1], true
}

// Tail returns the trailing n observations (all of them when n <= 0 or n >= Len).
func (h PriceHistory) Tail(n int) []PriceObservation {
	if n <= 0 || n >= len(h.obs) {
		return h.Observations()
	}
	out := make([]PriceObservation, n)
	copy(out, h.obs[len(h.obs)-n:])
	return out
}

// Split returns the history without its trailing n observations, and those n observations.
func (h PriceHistory) Split(n int) (PriceHistory, []PriceObservation) {
	if n <= 0 {
		return h, nil
	}
	if n >= len(h.obs) {
		return PriceHistory{}, h.Observations()
	}
	head := make([]PriceObservation, len(h.obs)-n)
	copy(head, h.obs[:len(h.obs)-n])
	return PriceHistory{obs: head}, h.Tail(n)
}

// DaysBehind returns the number of whole calendar days between the last close and now, or -1 when empty.
func (h PriceHistory) DaysBehind(now time.Time) int {
	last, ok := h.Last()
	if !ok {
		return -1
	}
	return DaysBetween(last.Date, now)
}

// Freshness labels how current the history is relative to now.
func (h PriceHistory) Freshness(now time.Time) string {
	return FreshnessLabel(h.DaysBehind(now))
}

// DaysBetween counts whole calendar days from day to now, never negative.
func DaysBetween(day, now time.Time) int {
	d := TruncateDay(now).Sub(TruncateDay(day))
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// FreshnessLabel maps a days-behind count to current, fresh, recent or outdated; negative means empty.
func FreshnessLabel(days int) string {
	switch {
	case days < 0:
		return "empty"
	case days == 0:
		return "current"
	case days <= 3:
		return "fresh"
	case days <= 7:
		return "recent"
	default:
		return "outdated"
	}
}

// TruncateDay returns t as a UTC calendar day at midnight.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
