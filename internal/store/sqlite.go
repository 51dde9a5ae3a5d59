/**
 * @description
 * SQLite implementation of the CredentialStore. The database is a single
 * small file under the client's data directory; the schema is created
 * idempotently on open.
 *
 * @dependencies
 * - database/sql: Standard Go library.
 * - modernc.org/sqlite: Pure-Go SQLite driver, no cgo.
 */

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/flipcashindia/fieldops/internal/domain"
)

const schema = `
-- Session: at most one row, replaced whole on login/refresh.
CREATE TABLE IF NOT EXISTS session (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    access_token TEXT NOT NULL,
    refresh_token TEXT NOT NULL,
    user_json TEXT NOT NULL,
    device_id TEXT NOT NULL,
    issued_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Device identity: generated once, survives logout.
CREATE TABLE IF NOT EXISTS device (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    device_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Cached role profiles, invalidated on logout.
CREATE TABLE IF NOT EXISTS profile_cache (
    role TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    fetched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore persists credentials in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the credential database at path and ensures
// the schema exists. Safe to call on every start.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	// A local credential file has no concurrent writers; a single
	// connection avoids SQLITE_BUSY on overlapping statements.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// LoadSession returns the persisted session, or nil when logged out.
func (s *SQLiteStore) LoadSession(ctx context.Context) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT access_token, refresh_token, user_json, device_id, issued_at FROM session WHERE id = 1`)

	var sess domain.Session
	var userJSON string
	err := row.Scan(&sess.Tokens.Access, &sess.Tokens.Refresh, &userJSON, &sess.DeviceID, &sess.IssuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if err := json.Unmarshal([]byte(userJSON), &sess.User); err != nil {
		return nil, fmt.Errorf("failed to decode stored user: %w", err)
	}
	return &sess, nil
}

// SaveSession persists the session whole, replacing any prior one.
func (s *SQLiteStore) SaveSession(ctx context.Context, sess *domain.Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO session (id, access_token, refresh_token, user_json, device_id, issued_at, updated_at)
        VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(id) DO UPDATE SET
            access_token = excluded.access_token,
            refresh_token = excluded.refresh_token,
            user_json = excluded.user_json,
            device_id = excluded.device_id,
            issued_at = excluded.issued_at,
            updated_at = CURRENT_TIMESTAMP`,
		sess.Tokens.Access, sess.Tokens.Refresh, string(userJSON), sess.DeviceID, sess.IssuedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ClearSession removes the persisted session.
func (s *SQLiteStore) ClearSession(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// DeviceID returns the stable device identifier, or "" when absent.
func (s *SQLiteStore) DeviceID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT device_id FROM device WHERE id = 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load device id: %w", err)
	}
	return id, nil
}

// SaveDeviceID persists the generated device identifier.
func (s *SQLiteStore) SaveDeviceID(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO device (id, device_id) VALUES (1, ?)
        ON CONFLICT(id) DO UPDATE SET device_id = excluded.device_id`, id)
	if err != nil {
		return fmt.Errorf("failed to save device id: %w", err)
	}
	return nil
}

// SaveProfileCache stores a role profile snapshot.
func (s *SQLiteStore) SaveProfileCache(ctx context.Context, role domain.Role, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO profile_cache (role, payload, fetched_at) VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(role) DO UPDATE SET payload = excluded.payload, fetched_at = CURRENT_TIMESTAMP`,
		string(role), string(payload))
	if err != nil {
		return fmt.Errorf("failed to save profile cache: %w", err)
	}
	return nil
}

// LoadProfileCache returns the cached snapshot, or nil when absent.
func (s *SQLiteStore) LoadProfileCache(ctx context.Context, role domain.Role) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM profile_cache WHERE role = ?`, string(role)).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile cache: %w", err)
	}
	return []byte(payload), nil
}

// ClearProfileCaches removes all cached profiles.
func (s *SQLiteStore) ClearProfileCaches(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM profile_cache`); err != nil {
		return fmt.Errorf("failed to clear profile caches: %w", err)
	}
	return nil
}
