package cache

import (
	"context"
	"testing"
	"time"
)

func TestTTLCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewTTLCache()
	c.now = func() time.Time { return now }

	if err := c.SetBytes(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	b, ok, err := c.GetBytes(ctx, "k")
	if err != nil || !ok || string(b) != "v" {
		t.Fatalf("expected hit, got %q %v %v", b, ok, err)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := c.GetBytes(ctx, "k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not evicted")
	}
}

func TestTTLCacheCopiesValues(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache()
	v := []byte("abc")
	_ = c.SetBytes(ctx, "k", v, 0)
	v[0] = 'x'
	b, _, _ := c.GetBytes(ctx, "k")
	b[1] = 'y'
	again, _, _ := c.GetBytes(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("cache shares memory with callers: %q", again)
	}
}
