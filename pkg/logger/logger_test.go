package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFieldsAreWrittenAsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).With(String("component", "test"))
	l.Info("forecast ready",
		String("symbol", "AAPL"),
		Int("horizon", 14),
		Float64("target", 101.5),
		Bool("cached", true),
		Date("as_of", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	want := map[string]interface{}{
		"message":   "forecast ready",
		"component": "test",
		"symbol":    "AAPL",
		"horizon":   float64(14),
		"target":    101.5,
		"cached":    true,
		"as_of":     "2024-01-05",
		"error":     "boom",
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s: got %v want %v", k, got[k], v)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New(&Config{Level: "loud", Output: "stdout"}); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}
