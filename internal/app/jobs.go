/**
 * @description
 * Background job implementations for the client scheduler.
 */

package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/flipcashindia/fieldops/internal/config"
	"github.com/flipcashindia/fieldops/internal/domain"
	"github.com/flipcashindia/fieldops/pkg/marketclient"
)

// SessionControl defines the session operations needed by the jobs.
type SessionControl interface {
	IsAuthenticated() bool
	CurrentUser() *domain.User
	ExpiresAt() (time.Time, bool)
	Refresh(ctx context.Context) error
}

// AgentAPI defines the backend calls the jobs issue.
type AgentAPI interface {
	SetAgentAvailability(ctx context.Context, available bool) error
	Assignments(ctx context.Context, opts marketclient.AssignmentListOptions) ([]domain.Assignment, error)
}

// Jobs contains the logic for all scheduled tasks.
type Jobs struct {
	sessions SessionControl
	api      AgentAPI
	logger   *slog.Logger
	config   config.Config

	// onAssignments receives each successful poll result; nil disables
	// polling side effects (the poll still refreshes the cached view).
	onAssignments func([]domain.Assignment)
}

// NewJobs creates a new Jobs runner.
func NewJobs(sessions SessionControl, api AgentAPI, logger *slog.Logger, cfg config.Config) *Jobs {
	return &Jobs{
		sessions: sessions,
		api:      api,
		logger:   logger,
		config:   cfg,
	}
}

// OnAssignments registers the callback invoked with each poll result.
func (j *Jobs) OnAssignments(fn func([]domain.Assignment)) {
	j.onAssignments = fn
}

// RefreshTokenIfExpiring proactively refreshes the access token when it is
// within the configured leeway of expiry. Reactive refresh (on 401) covers
// the rest; this just keeps interactive calls off the slow path.
func (j *Jobs) RefreshTokenIfExpiring() {
	if !j.sessions.IsAuthenticated() {
		return
	}
	expiry, ok := j.sessions.ExpiresAt()
	if !ok {
		return
	}
	leeway := time.Duration(j.config.TokenRefreshLeewaySec) * time.Second
	if time.Until(expiry) > leeway {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := j.sessions.Refresh(ctx); err != nil {
		j.logger.Warn("proactive token refresh failed", "error", err)
		return
	}
	j.logger.Debug("proactively refreshed access token")
}

// SendAvailabilityHeartbeat re-asserts agent availability so the backend
// does not time the agent out while the client is running.
func (j *Jobs) SendAvailabilityHeartbeat() {
	user := j.sessions.CurrentUser()
	if user == nil || !user.HasRole(domain.RoleAgent) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := j.api.SetAgentAvailability(ctx, true); err != nil {
		j.logger.Warn("availability heartbeat failed", "error", err)
		return
	}
	j.logger.Debug("availability heartbeat sent")
}

// PollAssignments pulls the current assignment list and hands it to the
// registered callback.
func (j *Jobs) PollAssignments() {
	user := j.sessions.CurrentUser()
	if user == nil || !user.HasRole(domain.RoleAgent) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	assignments, err := j.api.Assignments(ctx, marketclient.AssignmentListOptions{})
	if err != nil {
		j.logger.Warn("assignment poll failed", "error", err)
		return
	}
	if j.onAssignments != nil {
		j.onAssignments(assignments)
	}
}
