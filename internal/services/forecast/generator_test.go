package forecast

import (
	"errors"
	"math"
	"testing"
	"time"

	"FinCast/internal/domain/models"
	domsvc "FinCast/internal/domain/service"
)

var friday = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

func params() domsvc.GenerateParams {
	return domsvc.GenerateParams{
		CurrentPrice: 100,
		Bias:         models.TrendBias{Direction: models.Bullish, Drift: 0.002},
		Volatility:   0.02,
		HorizonDays:  14,
		Confidence:   0.8,
		LastDate:     friday,
	}
}

func TestZScore(t *testing.T) {
	cases := map[float64]float64{0.8: 1.2815515655, 0.9: 1.6448536270, 0.95: 1.9599639845}
	for c, want := range cases {
		if got := ZScore(c); math.Abs(got-want) > 1e-8 {
			t.Fatalf("z(%v): got %v want %v", c, got, want)
		}
	}
}

func TestGenerateHorizonLength(t *testing.T) {
	for _, n := range []int{1, 5, 14, 60} {
		p := params()
		p.HorizonDays = n
		path, err := NewGenerator(nil).Generate(p)
		if err != nil {
			t.Fatalf("generate %d: %v", n, err)
		}
		if len(path) != n {
			t.Fatalf("horizon %d: got %d points", n, len(path))
		}
	}
}

func TestGenerateFirstDayAfterFridayIsMonday(t *testing.T) {
	path, err := NewGenerator(nil).Generate(params())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	if !path[0].Date.Equal(want) {
		t.Fatalf("first date: got %s want %s", path[0].Date.Format(models.DateLayout), want.Format(models.DateLayout))
	}
}

func TestGenerateSkipsWeekends(t *testing.T) {
	p := params()
	p.HorizonDays = 40
	path, err := NewGenerator(nil).Generate(p)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	prev := p.LastDate
	for i, pt := range path {
		if wd := pt.Date.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("point %d falls on %s", i, wd)
		}
		if !pt.Date.After(prev) {
			t.Fatalf("point %d not after previous date", i)
		}
		prev = pt.Date
	}
}

func TestGenerateSkipsHolidays(t *testing.T) {
	cal, err := NewCalendar([]string{"2024-01-08", "2024-01-09"})
	if err != nil {
		t.Fatalf("calendar: %v", err)
	}
	path, err := NewGenerator(cal).Generate(params())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	if !path[0].Date.Equal(want) {
		t.Fatalf("first date: got %s want 2024-01-10", path[0].Date.Format(models.DateLayout))
	}
}

func TestGenerateBandOrderingAndWidth(t *testing.T) {
	for _, drift := range []float64{-0.02, -0.005, 0, 0.005, 0.02} {
		p := params()
		p.HorizonDays = 30
		p.Bias.Drift = drift
		path, err := NewGenerator(nil).Generate(p)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		prevFrac := 0.0
		for i, pt := range path {
			if !(pt.Lower <= pt.Mean && pt.Mean <= pt.Upper) {
				t.Fatalf("drift %v point %d: band out of order %+v", drift, i, pt)
			}
			frac := (pt.Upper - pt.Mean) / pt.Mean
			if frac < prevFrac-1e-12 {
				t.Fatalf("drift %v point %d: half-width fraction shrank from %v to %v", drift, i, prevFrac, frac)
			}
			prevFrac = frac
		}
	}
}

func TestGenerateCompoundsDrift(t *testing.T) {
	p := params()
	path, err := NewGenerator(nil).Generate(p)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := p.CurrentPrice * math.Pow(1+p.Bias.Drift, float64(p.HorizonDays))
	if math.Abs(path[len(path)-1].Mean-want) > 1e-9 {
		t.Fatalf("final mean: got %v want %v", path[len(path)-1].Mean, want)
	}
	// first step half-width is vol * z * sqrt(1) of the mean
	hw := path[0].Mean * p.Volatility * ZScore(p.Confidence)
	if math.Abs((path[0].Upper-path[0].Mean)-hw) > 1e-9 {
		t.Fatalf("first half-width: got %v want %v", path[0].Upper-path[0].Mean, hw)
	}
}

func TestGenerateBandFractionFollowsMeanOnFallingPath(t *testing.T) {
	p := params()
	p.Volatility = 0.3
	p.Bias = models.TrendBias{Direction: models.Bearish, Drift: -0.3}
	p.HorizonDays = 8
	path, err := NewGenerator(nil).Generate(p)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	z := ZScore(p.Confidence)
	for i, pt := range path {
		want := p.Volatility * z * math.Sqrt(float64(i+1))
		if got := (pt.Upper - pt.Mean) / pt.Mean; math.Abs(got-want) > 1e-12 {
			t.Fatalf("point %d: upper fraction %v, want %v", i, got, want)
		}
		if lower := math.Max(pt.Mean*(1-want), DefaultPriceFloor); math.Abs(pt.Lower-lower) > 1e-12 {
			t.Fatalf("point %d: lower %v, want %v", i, pt.Lower, lower)
		}
	}
	// t=6: 0.3 * 1.2816 * sqrt(6)
	frac6 := (path[5].Upper - path[5].Mean) / path[5].Mean
	if math.Abs(frac6-0.9418) > 1e-3 {
		t.Fatalf("t=6 fraction %v", frac6)
	}
}

func TestGenerateZeroVolatilityCollapsesBand(t *testing.T) {
	p := params()
	p.Volatility = 0
	p.Bias = models.TrendBias{Direction: models.Neutral}
	path, err := NewGenerator(nil).Generate(p)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i, pt := range path {
		if pt.Lower != pt.Mean || pt.Upper != pt.Mean {
			t.Fatalf("point %d: expected collapsed band, got %+v", i, pt)
		}
	}
}

func TestGenerateBandFloor(t *testing.T) {
	p := params()
	p.CurrentPrice = 0.05
	p.Volatility = 0.9
	p.Bias.Drift = -0.5
	path, err := NewGenerator(nil).Generate(p)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i, pt := range path {
		if pt.Lower < DefaultPriceFloor || pt.Mean < DefaultPriceFloor {
			t.Fatalf("point %d below floor: %+v", i, pt)
		}
	}
}

func TestGenerateIsIdempotent(t *testing.T) {
	a, err := NewGenerator(nil).Generate(params())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, _ := NewGenerator(nil).Generate(params())
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domsvc.GenerateParams)
		want   error
	}{
		{"zero horizon", func(p *domsvc.GenerateParams) { p.HorizonDays = 0 }, models.ErrInvalidHorizon},
		{"negative horizon", func(p *domsvc.GenerateParams) { p.HorizonDays = -3 }, models.ErrInvalidHorizon},
		{"confidence zero", func(p *domsvc.GenerateParams) { p.Confidence = 0 }, models.ErrInvalidConfidence},
		{"confidence one", func(p *domsvc.GenerateParams) { p.Confidence = 1 }, models.ErrInvalidConfidence},
		{"confidence above one", func(p *domsvc.GenerateParams) { p.Confidence = 1.2 }, models.ErrInvalidConfidence},
		{"non-positive price", func(p *domsvc.GenerateParams) { p.CurrentPrice = 0 }, models.ErrMalformedHistory},
		{"negative volatility", func(p *domsvc.GenerateParams) { p.Volatility = -0.01 }, models.ErrMalformedHistory},
		{"nan volatility", func(p *domsvc.GenerateParams) { p.Volatility = math.NaN() }, models.ErrMalformedHistory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params()
			tt.mutate(&p)
			if _, err := NewGenerator(nil).Generate(p); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
