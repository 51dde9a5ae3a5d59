/**
 * @description
 * The session manager is the single process-wide source of truth for "who is
 * logged in". It owns the access/refresh token pair and the authenticated
 * user profile, persists them through the credential store, and implements
 * marketclient.TokenSource so the private channel can pull the bearer token
 * and trigger the one-shot refresh on authorization failure.
 *
 * Invariants:
 *   - Dependents observe either no session or a fully formed one; the
 *     session is built whole and swapped under the lock.
 *   - Concurrent authorization failures collapse into a single upstream
 *     refresh (singleflight), so the server never sees a refresh storm.
 *   - Logout clears local state unconditionally, even when the server-side
 *     token invalidation fails.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: Unverified claim introspection (subject,
 *   expiry). Signature verification is the server's job.
 * - golang.org/x/sync/singleflight: Refresh deduplication.
 * - github.com/google/uuid: Device identifier generation.
 */

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/flipcashindia/fieldops/internal/domain"
	"github.com/flipcashindia/fieldops/internal/store"
	"github.com/flipcashindia/fieldops/pkg/marketclient"
)

// ErrNotAuthenticated is returned when an operation requires a session and
// none is held.
var ErrNotAuthenticated = errors.New("not authenticated")

// EventType classifies session transitions.
type EventType string

const (
	EventLogin   EventType = "login"
	EventLogout  EventType = "logout"
	EventRefresh EventType = "refresh"
)

// Event is delivered to subscribers on every session transition. User is
// nil for logout events.
type Event struct {
	Type EventType
	User *domain.User
}

// Manager holds the current session and mediates every mutation of it.
type Manager struct {
	client *marketclient.Client
	creds  store.CredentialStore
	logger *slog.Logger

	mu       sync.RWMutex
	sess     *domain.Session
	deviceID string

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	refreshGroup singleflight.Group
}

// NewManager restores any persisted session, ensures a device identifier
// exists, and wires itself as the client's token source.
func NewManager(ctx context.Context, client *marketclient.Client, creds store.CredentialStore, logger *slog.Logger) (*Manager, error) {
	m := &Manager{
		client: client,
		creds:  creds,
		logger: logger,
		subs:   make(map[int]func(Event)),
	}

	deviceID, err := creds.DeviceID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device id: %w", err)
	}
	if deviceID == "" {
		deviceID = uuid.NewString()
		if err := creds.SaveDeviceID(ctx, deviceID); err != nil {
			return nil, fmt.Errorf("failed to persist device id: %w", err)
		}
		logger.Info("generated device identifier", "device_id", deviceID)
	}
	m.deviceID = deviceID

	sess, err := creds.LoadSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	m.sess = sess
	if sess != nil {
		logger.Info("restored session", "user_id", sess.User.ID, "role", sess.User.Role)
	}

	client.SetTokenSource(m)
	return m, nil
}

// DeviceID returns the stable device identifier.
func (m *Manager) DeviceID() string {
	return m.deviceID
}

// SendLoginOTP dispatches a login OTP to the given phone number.
func (m *Manager) SendLoginOTP(ctx context.Context, phone string) (*marketclient.OTPChallenge, error) {
	return m.client.SendOTP(ctx, marketclient.SendOTPRequest{Phone: phone, Purpose: "login"})
}

// Login exchanges an OTP verification for a session. The token subject must
// match the user id the server reports alongside it.
func (m *Manager) Login(ctx context.Context, phone, code string) (*domain.User, error) {
	result, err := m.client.VerifyOTP(ctx, marketclient.VerifyOTPRequest{
		Phone:    phone,
		Code:     code,
		DeviceID: m.deviceID,
	})
	if err != nil {
		return nil, err
	}

	if subject := tokenSubject(result.Tokens.Access); subject != "" && subject != result.User.ID {
		return nil, fmt.Errorf("token subject %q does not match user id %q", subject, result.User.ID)
	}

	sess := &domain.Session{
		Tokens:   result.Tokens,
		User:     result.User,
		DeviceID: m.deviceID,
		IssuedAt: time.Now().UTC(),
	}
	if err := m.creds.SaveSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	m.mu.Lock()
	m.sess = sess
	m.mu.Unlock()

	m.logger.Info("logged in", "user_id", sess.User.ID, "role", sess.User.Role, "created", result.Created)
	user := sess.User
	m.notify(Event{Type: EventLogin, User: &user})
	return &user, nil
}

// Logout invalidates the refresh token server-side on a best-effort basis,
// then clears local state unconditionally.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.RLock()
	sess := m.sess
	m.mu.RUnlock()
	if sess == nil {
		return nil
	}

	if err := m.client.Logout(ctx, sess.Tokens.Refresh); err != nil {
		m.logger.Warn("server-side logout failed; clearing local session anyway", "error", err)
	}
	return m.clearLocal(ctx)
}

// Refresh exchanges the refresh token for a new access token. Concurrent
// callers share a single upstream exchange.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err, _ := m.refreshGroup.Do("refresh", func() (interface{}, error) {
		m.mu.RLock()
		sess := m.sess
		m.mu.RUnlock()
		if sess == nil {
			return nil, ErrNotAuthenticated
		}

		result, err := m.client.RefreshToken(ctx, sess.Tokens.Refresh)
		if err != nil {
			return nil, err
		}

		updated := *sess
		updated.Tokens.Access = result.Access
		if result.Refresh != "" {
			updated.Tokens.Refresh = result.Refresh
		}
		updated.IssuedAt = time.Now().UTC()

		if err := m.creds.SaveSession(ctx, &updated); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed session: %w", err)
		}

		m.mu.Lock()
		m.sess = &updated
		m.mu.Unlock()

		m.logger.Debug("access token refreshed", "user_id", updated.User.ID)
		user := updated.User
		m.notify(Event{Type: EventRefresh, User: &user})
		return nil, nil
	})
	return err
}

// AccessToken implements marketclient.TokenSource.
func (m *Manager) AccessToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return "", ErrNotAuthenticated
	}
	return m.sess.Tokens.Access, nil
}

// RefreshAccess implements marketclient.TokenSource.
func (m *Manager) RefreshAccess(ctx context.Context) error {
	return m.Refresh(ctx)
}

// SessionExpired implements marketclient.TokenSource: the refresh-and-replay
// cycle has failed, so the session is torn down locally with no further
// server calls.
func (m *Manager) SessionExpired(ctx context.Context) {
	m.logger.Warn("session expired; forcing logout")
	if err := m.clearLocal(ctx); err != nil {
		m.logger.Error("failed to clear expired session", "error", err)
	}
}

// clearLocal removes all local session state and notifies subscribers.
func (m *Manager) clearLocal(ctx context.Context) error {
	m.mu.Lock()
	wasAuthenticated := m.sess != nil
	m.sess = nil
	m.mu.Unlock()

	var firstErr error
	if err := m.creds.ClearSession(ctx); err != nil {
		firstErr = fmt.Errorf("failed to clear stored session: %w", err)
	}
	if err := m.creds.ClearProfileCaches(ctx); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to clear profile caches: %w", err)
	}

	if wasAuthenticated {
		m.notify(Event{Type: EventLogout})
	}
	return firstErr
}

// IsAuthenticated reports whether a session is held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess != nil
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (m *Manager) CurrentUser() *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil
	}
	user := m.sess.User
	return &user
}

// Session returns a snapshot of the current session, or nil.
func (m *Manager) Session() *domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil
	}
	copied := *m.sess
	return &copied
}

// ExpiresAt reports the access token expiry when the token carries one.
func (m *Manager) ExpiresAt() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return time.Time{}, false
	}
	return tokenExpiry(m.sess.Tokens.Access)
}

// Subscribe registers a transition callback and returns an unsubscribe
// function. Callbacks run synchronously in transition order.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) notify(e Event) {
	m.subMu.Lock()
	callbacks := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		callbacks = append(callbacks, fn)
	}
	m.subMu.Unlock()

	for _, fn := range callbacks {
		fn(e)
	}
}

// tokenSubject extracts the sub claim without verifying the signature.
func tokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	subject, _ := claims.GetSubject()
	if subject != "" {
		return subject
	}
	if id, ok := claims["user_id"].(string); ok {
		return id
	}
	return ""
}

// tokenExpiry extracts the exp claim without verifying the signature.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
