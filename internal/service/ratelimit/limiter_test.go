package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestLimiterRefills(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(2, 1)
	l.now = func() time.Time { return now }

	if !l.Allow("a") || !l.Allow("a") {
		t.Fatalf("expected the first two calls to pass")
	}
	if l.Allow("a") {
		t.Fatalf("expected the bucket to be empty")
	}
	if !l.Allow("b") {
		t.Fatalf("keys must not share buckets")
	}
	now = now.Add(time.Second)
	if !l.Allow("a") {
		t.Fatalf("expected one token after one second")
	}
}

func TestLimiterPrune(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := New(1, 1)
	l.now = func() time.Time { return now }
	l.Allow("a")
	now = now.Add(time.Hour)
	if n := l.Prune(time.Minute); n != 1 {
		t.Fatalf("expected one pruned bucket, got %d", n)
	}
}

func TestMiddlewareReturns429(t *testing.T) {
	e := echo.New()
	e.Use(Middleware(New(1, 0)))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		if rec.Code != want {
			t.Fatalf("request %d: got %d want %d", i, rec.Code, want)
		}
	}
}
