package di

import (
	"reflect"
	"testing"

	"FinCast/internal/service/cache"
	"FinCast/pkg/config"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return cfg
}

func TestOptionalInfrastructureDisabled(t *testing.T) {
	cfg := defaultConfig(t)
	l, err := ProvideLogger(cfg)
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	ch, err := ProvideClickHouseClient(cfg, l)
	if err != nil || ch != nil {
		t.Fatalf("clickhouse should be skipped, got %v %v", ch, err)
	}
	p, err := ProvideKafkaProducer(cfg)
	if err != nil || p != nil {
		t.Fatalf("producer should be skipped, got %v %v", p, err)
	}
	if store := ProvideHistoryStore(nil, l); store != nil {
		t.Fatalf("store without clickhouse: %v", store)
	}
	if _, ok := ProvideBytesCache(cfg, l).(*cache.TTLCache); !ok {
		t.Fatalf("expected in-process cache when redis is disabled")
	}
	if sinks := ProvideSinks(cfg, nil, nil, nil); len(sinks) != 0 {
		t.Fatalf("expected no sinks, got %d", len(sinks))
	}
}

func TestProvideSinksIncludesHub(t *testing.T) {
	cfg := defaultConfig(t)
	hub := ProvideHub(cfg, nil)
	if hub == nil {
		t.Fatalf("websocket is enabled by default")
	}
	sinks := ProvideSinks(cfg, nil, nil, hub)
	if len(sinks) != 1 || sinks[0].Name() != "websocket" {
		t.Fatalf("unexpected sinks %+v", sinks)
	}

	cfg.WebSocket.Enabled = false
	if ProvideHub(cfg, nil) != nil {
		t.Fatalf("hub should be nil when disabled")
	}
}

func TestInitializeAppDefaults(t *testing.T) {
	cfg := defaultConfig(t)
	app, err := InitializeApp(cfg)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if got := app.Components(); !reflect.DeepEqual(got, []string{"http"}) {
		t.Fatalf("components = %v", got)
	}
}

func TestInitializeAppWithScheduler(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.Watchlist = []string{"AAPL"}
	cfg.WebSocket.Enabled = false

	app, err := InitializeApp(cfg)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if got := app.Components(); !reflect.DeepEqual(got, []string{"http", "scheduler"}) {
		t.Fatalf("components = %v", got)
	}
}
