package forecast

import (
	"fmt"
	"time"

	"FinCast/internal/domain/models"
)

// Calendar steps over trading days: never Saturday or Sunday, optionally skipping holidays.
type Calendar struct {
	holidays map[string]struct{}
}

// NewCalendar builds a calendar from holiday dates in YYYY-MM-DD form.
func NewCalendar(holidays []string) (*Calendar, error) {
	c := &Calendar{holidays: make(map[string]struct{}, len(holidays))}
	for _, s := range holidays {
		d, err := time.Parse(models.DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("holiday %q: %w", s, err)
		}
		c.holidays[d.Format(models.DateLayout)] = struct{}{}
	}
	return c, nil
}

// WeekdayCalendar skips weekends only.
func WeekdayCalendar() *Calendar { return &Calendar{} }

// IsBusinessDay reports whether d is a trading day.
func (c *Calendar) IsBusinessDay(d time.Time) bool {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	if c == nil || len(c.holidays) == 0 {
		return true
	}
	_, closed := c.holidays[d.Format(models.DateLayout)]
	return !closed
}

// Next returns the first business day strictly after d.
func (c *Calendar) Next(d time.Time) time.Time {
	d = models.TruncateDay(d).AddDate(0, 0, 1)
	for !c.IsBusinessDay(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// Days returns n successive business days after d.
func (c *Calendar) Days(d time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		d = c.Next(d)
		out = append(out, d)
	}
	return out
}
