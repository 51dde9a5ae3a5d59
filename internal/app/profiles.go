/**
 * @description
 * Session-derived profile stores. Each store caches the role-specific
 * profile keyed to the current session's user: when a user with the matching
 * role logs in it fetches exactly once, on logout it clears, and callers can
 * force a Refetch after an onboarding step completes. Fetch failures are not
 * retried automatically.
 *
 * Snapshots are mirrored into the credential store so a restarted client can
 * show the last known profile before the first fetch lands.
 */

package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/flipcashindia/fieldops/internal/domain"
	"github.com/flipcashindia/fieldops/internal/session"
	"github.com/flipcashindia/fieldops/internal/store"
	"github.com/flipcashindia/fieldops/pkg/marketclient"
)

// fetchTimeout bounds the background fetch triggered by a login event.
const fetchTimeout = 15 * time.Second

// PartnerProfileStore caches the partner business profile.
type PartnerProfileStore struct {
	client *marketclient.Client
	creds  store.CredentialStore
	logger *slog.Logger

	mu      sync.Mutex
	profile *domain.PartnerProfile
	// fetched flips once a server fetch has succeeded this process; from
	// then on the persisted snapshot is no longer consulted, so an
	// invalidation forces a real refetch instead of resurfacing stale data.
	fetched bool
}

// NewPartnerProfileStore wires the store to session transitions and the
// invalidation dispatcher.
func NewPartnerProfileStore(client *marketclient.Client, creds store.CredentialStore, sessions *session.Manager, views *Invalidator, logger *slog.Logger) *PartnerProfileStore {
	p := &PartnerProfileStore{client: client, creds: creds, logger: logger}

	views.Register(ViewPartnerProfile, p.clear)
	sessions.Subscribe(func(e session.Event) {
		switch e.Type {
		case session.EventLogin:
			if e.User != nil && e.User.HasRole(domain.RolePartner) {
				ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
				defer cancel()
				if _, err := p.Refetch(ctx); err != nil {
					logger.Warn("initial partner profile fetch failed", "error", err)
				}
			}
		case session.EventLogout:
			p.clear()
		}
	})
	return p
}

// Profile returns the cached profile, falling back to the persisted
// snapshot, then to a fetch.
func (p *PartnerProfileStore) Profile(ctx context.Context) (*domain.PartnerProfile, error) {
	p.mu.Lock()
	if p.profile != nil {
		cached := *p.profile
		p.mu.Unlock()
		return &cached, nil
	}
	fetched := p.fetched
	p.mu.Unlock()

	if payload, err := p.creds.LoadProfileCache(ctx, domain.RolePartner); !fetched && err == nil && payload != nil {
		var snapshot domain.PartnerProfile
		if json.Unmarshal(payload, &snapshot) == nil {
			p.mu.Lock()
			p.profile = &snapshot
			p.mu.Unlock()
			return &snapshot, nil
		}
	}
	return p.Refetch(ctx)
}

// Refetch pulls a fresh profile from the server and replaces the cache.
func (p *PartnerProfileStore) Refetch(ctx context.Context) (*domain.PartnerProfile, error) {
	profile, err := p.client.PartnerProfile(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.profile = profile
	p.fetched = true
	p.mu.Unlock()

	if payload, err := json.Marshal(profile); err == nil {
		if err := p.creds.SaveProfileCache(ctx, domain.RolePartner, payload); err != nil {
			p.logger.Warn("failed to persist partner profile snapshot", "error", err)
		}
	}
	cached := *profile
	return &cached, nil
}

func (p *PartnerProfileStore) clear() {
	p.mu.Lock()
	p.profile = nil
	p.mu.Unlock()
}

// AgentProfileStore caches the agent field profile.
type AgentProfileStore struct {
	client *marketclient.Client
	creds  store.CredentialStore
	logger *slog.Logger

	mu      sync.Mutex
	profile *domain.AgentProfile
	fetched bool
}

// NewAgentProfileStore wires the store to session transitions and the
// invalidation dispatcher.
func NewAgentProfileStore(client *marketclient.Client, creds store.CredentialStore, sessions *session.Manager, views *Invalidator, logger *slog.Logger) *AgentProfileStore {
	a := &AgentProfileStore{client: client, creds: creds, logger: logger}

	views.Register(ViewAgentProfile, a.clear)
	sessions.Subscribe(func(e session.Event) {
		switch e.Type {
		case session.EventLogin:
			if e.User != nil && e.User.HasRole(domain.RoleAgent) {
				ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
				defer cancel()
				if _, err := a.Refetch(ctx); err != nil {
					logger.Warn("initial agent profile fetch failed", "error", err)
				}
			}
		case session.EventLogout:
			a.clear()
		}
	})
	return a
}

// Profile returns the cached profile, falling back to the persisted
// snapshot, then to a fetch.
func (a *AgentProfileStore) Profile(ctx context.Context) (*domain.AgentProfile, error) {
	a.mu.Lock()
	if a.profile != nil {
		cached := *a.profile
		a.mu.Unlock()
		return &cached, nil
	}
	fetched := a.fetched
	a.mu.Unlock()

	if payload, err := a.creds.LoadProfileCache(ctx, domain.RoleAgent); !fetched && err == nil && payload != nil {
		var snapshot domain.AgentProfile
		if json.Unmarshal(payload, &snapshot) == nil {
			a.mu.Lock()
			a.profile = &snapshot
			a.mu.Unlock()
			return &snapshot, nil
		}
	}
	return a.Refetch(ctx)
}

// Refetch pulls a fresh profile from the server and replaces the cache.
func (a *AgentProfileStore) Refetch(ctx context.Context) (*domain.AgentProfile, error) {
	profile, err := a.client.AgentProfile(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.profile = profile
	a.fetched = true
	a.mu.Unlock()

	if payload, err := json.Marshal(profile); err == nil {
		if err := a.creds.SaveProfileCache(ctx, domain.RoleAgent, payload); err != nil {
			a.logger.Warn("failed to persist agent profile snapshot", "error", err)
		}
	}
	cached := *profile
	return &cached, nil
}

func (a *AgentProfileStore) clear() {
	a.mu.Lock()
	a.profile = nil
	a.mu.Unlock()
}
