package safety

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ReloadScheduler re-reads the dictionary on a cron schedule. It covers
// filesystems where change notifications are unreliable, such as NFS or
// FUSE mounts.
type ReloadScheduler struct {
	schedule string
	reload   func() error
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewReloadScheduler validates schedule (standard five-field cron syntax or
// descriptors such as "@every 5m") and returns a stopped scheduler.
func NewReloadScheduler(schedule string, reload func() error, logger *slog.Logger) (*ReloadScheduler, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid reload schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReloadScheduler{
		schedule: schedule,
		reload:   reload,
		cron:     cron.New(),
		logger:   logger.With("component", "safety.scheduler"),
	}, nil
}

// Start schedules the reload job and stops it when ctx is cancelled.
func (s *ReloadScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("reload scheduler already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.reload(); err != nil {
			s.logger.Warn("scheduled dictionary reload failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reload: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("dictionary reload scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop stops the scheduler and waits for a running reload to finish.
func (s *ReloadScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("dictionary reload scheduler stopped")
}

// NextRun returns the next scheduled reload, or nil when not running.
func (s *ReloadScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
