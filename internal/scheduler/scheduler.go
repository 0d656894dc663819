package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	applogger "FinCast/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Job is a scheduled unit of work. The context is cancelled when the scheduler stops.
type Job func(ctx context.Context)

// Scheduler runs jobs on six-field cron specs (seconds first).
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	l      *applogger.Logger
}

func New(l *applogger.Logger) *Scheduler {
	if l == nil {
		l = applogger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		l:      l,
	}
}

// Register adds job under name. A run that is still in progress when the next tick fires is skipped.
func (s *Scheduler) Register(name, spec string, job Job) error {
	var running atomic.Bool
	_, err := s.cron.AddFunc(spec, func() {
		if !running.CompareAndSwap(false, true) {
			s.l.Warn("scheduled job still running, tick skipped", applogger.String("job", name))
			return
		}
		defer running.Store(false)
		s.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("register %s (%q): %w", name, spec, err)
	}
	s.l.Info("job registered", applogger.String("job", name), applogger.String("spec", spec))
	return nil
}

// RunNow executes job synchronously with panic protection.
func (s *Scheduler) RunNow(name string, job Job) {
	s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.l.Error("scheduled job panic", applogger.String("job", name), applogger.Any("panic", r))
		}
	}()
	job(s.ctx)
	s.l.Debug("scheduled job finished", applogger.String("job", name), applogger.Duration("took", time.Since(start)))
}

// Entries is the number of registered jobs.
func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }

// Start starts the cron scheduler in the background.
func (s *Scheduler) Start() error {
	s.cron.Start()
	s.l.Info("scheduler started", applogger.Int("jobs", s.Entries()))
	return nil
}

// Stop cancels running jobs and waits for them until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.l.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler stop: %w", ctx.Err())
	}
}
