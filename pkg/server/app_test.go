package server

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type fakeComponent struct {
	name     string
	rec      *recorder
	startErr error
	stopErr  error
}

func (f *fakeComponent) Start() error {
	f.rec.add("start " + f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	f.rec.add("stop " + f.name)
	return f.stopErr
}

func TestAppLifecycleOrder(t *testing.T) {
	rec := &recorder{}
	app := New(nil, time.Second)
	app.AddComponent("http", &fakeComponent{name: "http", rec: rec})
	app.AddComponent("consumer", &fakeComponent{name: "consumer", rec: rec})
	app.AddCloser("producer", func() error { rec.add("close producer"); return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.RunContext(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"start http", "start consumer", "stop consumer", "stop http", "close producer"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
}

func TestAppStartFailureStopsStarted(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	app := New(nil, time.Second)
	app.AddComponent("http", &fakeComponent{name: "http", rec: rec})
	app.AddComponent("consumer", &fakeComponent{name: "consumer", rec: rec, startErr: boom})
	app.AddComponent("scheduler", &fakeComponent{name: "scheduler", rec: rec})

	err := app.RunContext(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}
	want := []string{"start http", "start consumer", "stop http"}
	if !reflect.DeepEqual(rec.events, want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
}

func TestAppShutdownJoinsErrors(t *testing.T) {
	rec := &recorder{}
	stopErr := errors.New("stop failed")
	closeErr := errors.New("close failed")
	app := New(nil, time.Second)
	app.AddComponent("http", &fakeComponent{name: "http", rec: rec, stopErr: stopErr})
	app.AddCloser("clickhouse", func() error { return closeErr })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := app.RunContext(ctx)
	if !errors.Is(err, stopErr) || !errors.Is(err, closeErr) {
		t.Fatalf("expected both errors, got %v", err)
	}
}
