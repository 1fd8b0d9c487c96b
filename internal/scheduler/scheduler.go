// Package scheduler runs periodic maintenance tasks in the background.
package scheduler

import (
	"log/slog"
	"time"

	"idp-tool/internal/config"
	"idp-tool/internal/repository"
)

// Scheduler handles periodic tasks
type Scheduler struct {
	tokenRepo *repository.LoginTokenRepository
	config    *config.SchedulerConfig
	stopChan  chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler(tokenRepo *repository.LoginTokenRepository, cfg *config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		tokenRepo: tokenRepo,
		config:    cfg,
		stopChan:  make(chan struct{}),
	}
}

// Start starts all scheduled tasks
func (s *Scheduler) Start() {
	if !s.config.Enabled {
		slog.Info("Scheduler disabled")
		return
	}

	slog.Info("Starting scheduler", "token_cleanup_interval", s.config.TokenCleanupInterval)
	go s.runIntervalTask(s.config.TokenCleanupInterval, "token_cleanup", s.cleanupLoginTokens)
}

// Stop stops all scheduled tasks
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) runIntervalTask(interval time.Duration, name string, task func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			slog.Debug("Running scheduled task", "task", name)
			task()
		case <-s.stopChan:
			return
		}
	}
}

// cleanupLoginTokens removes expired and consumed magic-link tokens
func (s *Scheduler) cleanupLoginTokens() {
	deleted, err := s.tokenRepo.DeleteStale()
	if err != nil {
		slog.Error("Failed to clean up login tokens", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Cleaned up login tokens", "deleted", deleted)
	}
}
