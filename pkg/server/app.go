package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	applogger "FinCast/pkg/logger"
)

// Component is a long-running part of the application.
type Component interface {
	Start() error
	Stop(ctx context.Context) error
}

type namedComponent struct {
	name string
	c    Component
}

type namedCloser struct {
	name  string
	close func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	l               *applogger.Logger
	shutdownTimeout time.Duration
	components      []namedComponent
	closers         []namedCloser
}

// New creates an empty App.
func New(l *applogger.Logger, shutdownTimeout time.Duration) *App {
	if l == nil {
		l = applogger.Nop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &App{l: l, shutdownTimeout: shutdownTimeout}
}

// AddComponent registers a component. Components start in registration order and stop in reverse.
func (a *App) AddComponent(name string, c Component) {
	a.components = append(a.components, namedComponent{name: name, c: c})
}

// AddCloser registers a resource released after every component has stopped.
func (a *App) AddCloser(name string, fn func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: fn})
}

// Components returns the registered component names in start order.
func (a *App) Components() []string {
	out := make([]string, 0, len(a.components))
	for _, c := range a.components {
		out = append(out, c.name)
	}
	return out
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext starts every component and blocks until ctx is done, then shuts down.
func (a *App) RunContext(ctx context.Context) error {
	started, err := a.start()
	if err != nil {
		_ = a.shutdown(started)
		return err
	}
	a.l.Info("application started", applogger.Strings("components", a.Components()))

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown(started)
}

func (a *App) start() (int, error) {
	for i, nc := range a.components {
		if err := nc.c.Start(); err != nil {
			return i, fmt.Errorf("start %s: %w", nc.name, err)
		}
		a.l.Debug("component started", applogger.String("component", nc.name))
	}
	return len(a.components), nil
}

// shutdown stops the first n components in reverse order, then runs the closers.
func (a *App) shutdown(n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	var errs []error
	for i := n - 1; i >= 0; i-- {
		nc := a.components[i]
		if err := nc.c.Stop(ctx); err != nil {
			a.l.Warn("component stop error", applogger.String("component", nc.name), applogger.Error(err))
			errs = append(errs, fmt.Errorf("stop %s: %w", nc.name, err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		nc := a.closers[i]
		if err := nc.close(); err != nil {
			a.l.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
			errs = append(errs, fmt.Errorf("close %s: %w", nc.name, err))
		}
	}
	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}
