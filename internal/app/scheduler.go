/**
 * @description
 * Cron scheduler for the client's background jobs: proactive token refresh,
 * the availability heartbeat, and assignment polling for watch mode.
 */

package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/flipcashindia/fieldops/internal/config"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config config.Config
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(jobs *Jobs, logger *slog.Logger, cfg config.Config) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:   c,
		jobs:   jobs,
		logger: logger,
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.config.TokenRefreshSchedule, s.jobs.RefreshTokenIfExpiring); err != nil {
		s.logger.Error("failed to schedule token refresh job", "error", err)
	} else {
		s.logger.Info("scheduled token refresh job", "schedule", s.config.TokenRefreshSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.HeartbeatSchedule, s.jobs.SendAvailabilityHeartbeat); err != nil {
		s.logger.Error("failed to schedule availability heartbeat job", "error", err)
	} else {
		s.logger.Info("scheduled availability heartbeat job", "schedule", s.config.HeartbeatSchedule)
	}

	if _, err := s.cron.AddFunc(s.config.AssignmentPollSchedule, s.jobs.PollAssignments); err != nil {
		s.logger.Error("failed to schedule assignment poll job", "error", err)
	} else {
		s.logger.Info("scheduled assignment poll job", "schedule", s.config.AssignmentPollSchedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
