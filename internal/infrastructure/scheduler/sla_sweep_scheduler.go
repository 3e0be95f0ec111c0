package scheduler

import (
	"context"
	"sync"
	"time"

	slaapp "github.com/marketplace/backend/internal/application/sla"
	"go.uber.org/zap"
)

// SweepRunner runs one pass over unresolved tracking records
type SweepRunner interface {
	RunSweep(ctx context.Context, batchSize int) (*slaapp.SweepResult, error)
}

// SweepConfig holds configuration for the periodic breach sweep
type SweepConfig struct {
	Enabled   bool
	Interval  time.Duration
	BatchSize int
}

// DefaultSweepConfig returns default sweep configuration
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Enabled:   true,
		Interval:  5 * time.Minute,
		BatchSize: 200,
	}
}

// SlaSweepScheduler periodically re-evaluates open cases against their
// snapshotted deadlines so breaches surface without waiting for case
// activity
type SlaSweepScheduler struct {
	config SweepConfig
	runner SweepRunner
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSlaSweepScheduler creates a new sweep scheduler
func NewSlaSweepScheduler(config SweepConfig, runner SweepRunner, logger *zap.Logger) *SlaSweepScheduler {
	return &SlaSweepScheduler{
		config: config,
		runner: runner,
		logger: logger,
	}
}

// Start starts the sweep loop
func (s *SlaSweepScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("SLA sweep disabled")
		return nil
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("SLA sweep scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
	)

	return nil
}

// Stop gracefully stops the sweep loop
func (s *SlaSweepScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("SLA sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("SLA sweep scheduler stop timed out")
		return ctx.Err()
	}
}

// runLoop runs sweeps on the configured interval
func (s *SlaSweepScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run once immediately so a restart does not delay breach detection
	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep executes a single sweep pass
func (s *SlaSweepScheduler) sweep(ctx context.Context) {
	started := time.Now()

	result, err := s.runner.RunSweep(ctx, s.config.BatchSize)
	if err != nil {
		s.logger.Error("SLA sweep failed", zap.Error(err))
		return
	}

	s.logger.Info("SLA sweep completed",
		zap.Int("evaluated", result.Evaluated),
		zap.Int("changed", result.Changed),
		zap.Int("conflicts", result.Conflicts),
		zap.Duration("elapsed", time.Since(started)),
	)
}
