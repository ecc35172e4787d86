// Package scheduler triggers digest runs on cron schedules
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"geodigest/internal/core"

	"github.com/robfig/cron/v3"
)

// RunFunc performs one digest run for a variant
type RunFunc func(ctx context.Context, v core.Variant) error

// Entry describes one registered job
type Entry struct {
	Variant core.Variant
	Spec    string
	Next    time.Time
	Prev    time.Time
}

// Scheduler registers one cron job per digest variant. Every trigger is an
// independent run.
type Scheduler struct {
	cron *cron.Cron
	run  RunFunc
	log  *slog.Logger

	mu    sync.Mutex
	ctx   context.Context
	jobs  map[core.Variant]cron.EntryID
	specs map[core.Variant]string
}

// New creates a scheduler evaluating cron expressions in loc
func New(loc *time.Location, run RunFunc, log *slog.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		run:   run,
		log:   log,
		ctx:   context.Background(),
		jobs:  make(map[core.Variant]cron.EntryID),
		specs: make(map[core.Variant]string),
	}
}

// Register schedules variant v using a standard five-field cron expression.
// Registering a variant again replaces its schedule.
func (s *Scheduler) Register(v core.Variant, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(spec, func() { s.trigger(v) })
	if err != nil {
		return fmt.Errorf("invalid cron expression %q for %s digest: %w", spec, v, err)
	}
	if old, ok := s.jobs[v]; ok {
		s.cron.Remove(old)
	}
	s.jobs[v] = id
	s.specs[v] = spec

	s.log.Info("Scheduled digest", "variant", v, "cron", spec)
	return nil
}

// RunNow runs variant v immediately on the caller's goroutine
func (s *Scheduler) RunNow(ctx context.Context, v core.Variant) error {
	s.log.Info("Running digest now", "variant", v)
	return s.run(ctx, v)
}

// Start begins dispatching jobs. Jobs receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	n := len(s.jobs)
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("Scheduler started", "jobs", n)
}

// Stop halts dispatching and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

// Entries lists the registered jobs ordered by variant name
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]Entry, 0, len(s.jobs))
	for v, id := range s.jobs {
		e := s.cron.Entry(id)
		entries = append(entries, Entry{Variant: v, Spec: s.specs[v], Next: e.Next, Prev: e.Prev})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Variant < entries[j].Variant })
	return entries
}

// NextRun returns the next activation of v after t, without starting the scheduler
func (s *Scheduler) NextRun(v core.Variant, t time.Time) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.jobs[v]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Schedule.Next(t), true
}

func (s *Scheduler) trigger(v core.Variant) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	start := time.Now()
	s.log.Info("Starting scheduled digest", "variant", v)
	if err := s.run(ctx, v); err != nil {
		s.log.Error("Scheduled digest failed", "variant", v, "error", err)
		return
	}
	s.log.Info("Scheduled digest completed", "variant", v, "duration", time.Since(start))
}

// cronLogger adapts slog to cron.Logger
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
