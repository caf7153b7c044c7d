package pipeline

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultScheduleInterval is how often the background run fires.
const DefaultScheduleInterval = time.Hour

// Scheduler triggers periodic background analysis runs. Scheduled runs go
// through the same single-flight arbitration as API-triggered runs, so a
// tick landing during a manual run simply attaches to it.
type Scheduler struct {
	pipeline *Pipeline
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(p *Pipeline, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultScheduleInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		pipeline: p,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the ticker loop. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	s.logger.Info("scheduler started", zap.Duration("interval", s.interval))
	go s.loop(s.stop, s.done)
}

// Stop halts the ticker and waits for the loop to exit. A run already in
// flight is not interrupted.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.pipeline.Run(context.Background(), "scheduled", nil); err != nil {
				s.logger.Error("scheduled run failed", zap.Error(err))
			}
		case <-stop:
			return
		}
	}
}
