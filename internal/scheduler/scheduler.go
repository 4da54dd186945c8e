// Package scheduler drives the background billing pipelines. Each registered
// pipeline gets its own ticker goroutine so a stalled run of one pipeline
// never delays another; a single pipeline never overlaps itself because the
// loop only looks at the ticker again after the current run returns.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	ierr "github.com/condoflow/condoflow/internal/errors"
	"github.com/condoflow/condoflow/internal/logger"
	"github.com/condoflow/condoflow/internal/types"
)

// EntryPoint is a pipeline entry point. Errors are reported, not remediated:
// the scheduler logs them and keeps ticking.
type EntryPoint func(ctx context.Context) error

type pipeline struct {
	name     string
	interval time.Duration
	run      EntryPoint
}

// Scheduler invokes registered pipelines on fixed, per-pipeline intervals
type Scheduler struct {
	logger *logger.Logger

	mu        sync.Mutex
	pipelines []pipeline
	started   bool

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a new Scheduler
func New(logger *logger.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Register adds a named pipeline with a fixed fire interval. Must be called
// before Start.
func (s *Scheduler) Register(name string, interval time.Duration, entryPoint EntryPoint) error {
	if name == "" {
		return ierr.NewError("pipeline name is required").
			WithHint("Please provide a pipeline name").
			Mark(ierr.ErrValidation)
	}
	if entryPoint == nil {
		return ierr.NewError("pipeline entry point is required").
			WithHintf("Pipeline %s has no entry point", name).
			Mark(ierr.ErrValidation)
	}
	if interval <= 0 {
		return ierr.NewError("pipeline interval must be positive").
			WithHintf("Pipeline %s has interval %s", name, interval).
			Mark(ierr.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ierr.NewError("scheduler already started").
			WithHint("Pipelines must be registered before the scheduler starts").
			Mark(ierr.ErrInvalidOperation)
	}

	for _, p := range s.pipelines {
		if p.name == name {
			return ierr.NewError("pipeline already registered").
				WithHintf("Pipeline %s is already registered", name).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	s.pipelines = append(s.pipelines, pipeline{
		name:     name,
		interval: interval,
		run:      entryPoint,
	})

	s.logger.Infow("registered pipeline",
		"pipeline", name,
		"interval", interval.String())

	return nil
}

// Start launches one goroutine per registered pipeline
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true

	for _, p := range s.pipelines {
		s.wg.Add(1)
		go s.loop(p)
	}

	s.logger.Infow("scheduler started", "pipelines", len(s.pipelines))
}

// Stop prevents future ticks and waits for in-flight runs to complete.
// A running pipeline is never interrupted mid-run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Infow("scheduler stopped")
}

func (s *Scheduler) loop(p pipeline) {
	defer s.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case firedAt := <-ticker.C:
			s.runOnce(p, firedAt)
		}
	}
}

// runOnce executes a single pipeline run to completion. Failures (errors and
// panics alike) are logged and never disable future ticks.
func (s *Scheduler) runOnce(p pipeline, firedAt time.Time) {
	runID := types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_PIPELINE_RUN)
	start := time.Now()

	s.logger.Infow("pipeline run started",
		"pipeline", p.name,
		"run_id", runID,
		"fired_at", firedAt.UTC())

	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("pipeline run panicked",
				"pipeline", p.name,
				"run_id", runID,
				"panic", fmt.Sprintf("%v", r))
		}
	}()

	if err := p.run(context.Background()); err != nil {
		s.logger.Errorw("pipeline run failed",
			"pipeline", p.name,
			"run_id", runID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return
	}

	s.logger.Infow("pipeline run completed",
		"pipeline", p.name,
		"run_id", runID,
		"duration_ms", time.Since(start).Milliseconds())
}
