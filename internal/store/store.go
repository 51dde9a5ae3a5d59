/**
 * @description
 * This file defines the CredentialStore interface: the contract for durable
 * local state on the operator's machine. The client persists exactly three
 * things — the session token pair (with its user snapshot), a generated
 * device identifier, and a small per-role profile cache. Defining an
 * interface keeps the session and app layers testable against an in-memory
 * implementation.
 */

package store

import (
	"context"

	"github.com/flipcashindia/fieldops/internal/domain"
)

// CredentialStore is the durable local state contract.
type CredentialStore interface {
	// LoadSession returns the persisted session, or nil when logged out.
	LoadSession(ctx context.Context) (*domain.Session, error)
	// SaveSession persists the session whole, replacing any prior one.
	SaveSession(ctx context.Context, s *domain.Session) error
	// ClearSession removes the persisted session.
	ClearSession(ctx context.Context) error

	// DeviceID returns the stable device identifier, or "" when none has
	// been generated yet.
	DeviceID(ctx context.Context) (string, error)
	// SaveDeviceID persists the generated device identifier.
	SaveDeviceID(ctx context.Context, id string) error

	// SaveProfileCache stores a role profile snapshot as raw JSON.
	SaveProfileCache(ctx context.Context, role domain.Role, payload []byte) error
	// LoadProfileCache returns the cached snapshot, or nil when absent.
	LoadProfileCache(ctx context.Context, role domain.Role) ([]byte, error)
	// ClearProfileCaches removes all cached profiles.
	ClearProfileCaches(ctx context.Context) error
}
