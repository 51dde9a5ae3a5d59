/**
 * @description
 * In-memory CredentialStore used by tests and by ephemeral runs where no
 * data directory is configured. Nothing survives process exit.
 */

package store

import (
	"context"
	"sync"

	"github.com/flipcashindia/fieldops/internal/domain"
)

// MemoryStore holds credentials in process memory only.
type MemoryStore struct {
	mu       sync.Mutex
	session  *domain.Session
	deviceID string
	profiles map[domain.Role][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[domain.Role][]byte)}
}

func (m *MemoryStore) LoadSession(ctx context.Context) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil, nil
	}
	copied := *m.session
	return &copied, nil
}

func (m *MemoryStore) SaveSession(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *s
	m.session = &copied
	return nil
}

func (m *MemoryStore) ClearSession(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *MemoryStore) DeviceID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deviceID, nil
}

func (m *MemoryStore) SaveDeviceID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deviceID = id
	return nil
}

func (m *MemoryStore) SaveProfileCache(ctx context.Context, role domain.Role, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[role] = append([]byte(nil), payload...)
	return nil
}

func (m *MemoryStore) LoadProfileCache(ctx context.Context, role domain.Role) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.profiles[role]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), payload...), nil
}

func (m *MemoryStore) ClearProfileCaches(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = make(map[domain.Role][]byte)
	return nil
}
