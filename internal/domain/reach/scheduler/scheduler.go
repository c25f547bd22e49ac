package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CampaignProcessor recomputes reach for all active campaigns
type CampaignProcessor interface {
	ProcessActiveCampaigns(ctx context.Context) error
}

// Scheduler handles periodic reach recomputation of active campaigns
type Scheduler struct {
	processor CampaignProcessor
	interval  time.Duration
	logger    *slog.Logger
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// New creates a new scheduler
func New(processor CampaignProcessor, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		processor: processor,
		interval:  interval,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("reach scheduler started", "interval", s.interval)

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop stops the scheduler and waits for the current run to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopCh)
	s.wg.Wait()
	s.logger.Info("reach scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.process(ctx)

	for {
		select {
		case <-ticker.C:
			s.process(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) process(ctx context.Context) {
	start := time.Now()
	s.logger.Debug("recomputing campaign reach")

	if err := s.processor.ProcessActiveCampaigns(ctx); err != nil {
		s.logger.Error("failed to process active campaigns", "error", err)
		return
	}

	s.logger.Debug("campaign reach recomputed", "duration", time.Since(start))
}
