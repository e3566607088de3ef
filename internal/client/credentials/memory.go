package credentials

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/shopkeeper/internal/client/models"
)

// MemoryStore keeps the session in process memory only. It backs tests and
// one-shot invocations that must not touch disk.
type MemoryStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
	user    *models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Access(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access, nil
}

func (m *MemoryStore) Refresh(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.refresh, nil
}

func (m *MemoryStore) SetAccess(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = token
	return nil
}

func (m *MemoryStore) SetRefresh(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh = token
	return nil
}

func (m *MemoryStore) SwapAccess(_ context.Context, refresh, access string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refresh == "" || m.refresh != refresh {
		return false, nil
	}
	m.access = access
	return true, nil
}

func (m *MemoryStore) SetSession(_ context.Context, access, refresh string, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh, m.user = access, refresh, copyUser(user)
	return nil
}

func (m *MemoryStore) Profile(context.Context) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyUser(m.user), nil
}

func (m *MemoryStore) SetProfile(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = copyUser(user)
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh, m.user = "", "", nil
	return nil
}

func (m *MemoryStore) IsAuthenticated(context.Context) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.access != "", nil
}

func copyUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
