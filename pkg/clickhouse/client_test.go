package clickhouse

import (
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestBuildDSN(t *testing.T) {
	cfg := *defaultConfig()
	cfg.Host = "ch.local"
	cfg.Password = "p@ss"
	cfg.MaxExecTime = 30 * time.Second
	cfg.AsyncInsert = true
	cfg.WaitForAsync = true

	dsn := BuildDSN(cfg)
	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("dsn does not parse: %v", err)
	}
	if u.Scheme != "clickhouse" || u.Host != "ch.local:9000" || u.Path != "/fincast" {
		t.Fatalf("unexpected dsn: %s", dsn)
	}
	if pw, _ := u.User.Password(); pw != "p@ss" {
		t.Fatalf("password not preserved: %s", dsn)
	}
	q := u.Query()
	if q.Get("max_execution_time") != "30" || q.Get("async_insert") != "1" || q.Get("wait_for_async_insert") != "1" {
		t.Fatalf("query params: %v", q)
	}
	if q.Has("write_timeout") {
		t.Fatalf("write_timeout must stay client-side")
	}
}

func TestBuildDSNHTTP(t *testing.T) {
	cfg := *defaultConfig()
	cfg.Host = "h"
	cfg.UseHTTP = true
	if !strings.HasPrefix(BuildDSN(cfg), "http://") {
		t.Fatalf("http scheme not applied: %s", BuildDSN(cfg))
	}
}

func TestSchemaNamesDatabase(t *testing.T) {
	stmts := Schema("prices")
	if len(stmts) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts))
	}
	for _, s := range stmts[1:] {
		if !strings.Contains(s, "prices.") {
			t.Fatalf("statement missing database: %s", s)
		}
	}
}
