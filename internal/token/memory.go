package token

import "sync"

// MemoryStore keeps credentials in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	user *User
}

// NewMemoryStore creates a store, optionally seeded with user
func NewMemoryStore(user *User) *MemoryStore {
	ret := &MemoryStore{}
	if user != nil {
		cloned := *user
		ret.user = &cloned
	}
	return ret
}

func (m *MemoryStore) AccessToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return "", nil
	}
	return m.user.AccessToken, nil
}

func (m *MemoryStore) RefreshToken() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return "", nil
	}
	return m.user.RefreshToken, nil
}

func (m *MemoryStore) User() (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil, nil
	}
	cloned := *m.user
	return &cloned, nil
}

func (m *MemoryStore) SetUser(user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user == nil {
		m.user = nil
		return nil
	}
	cloned := *user
	m.user = &cloned
	return nil
}

func (m *MemoryStore) UpdateAccessToken(accessToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		m.user = &User{}
	}
	m.user.AccessToken = accessToken
	return nil
}

func (m *MemoryStore) UpdateRefreshToken(refreshToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		m.user = &User{}
	}
	m.user.RefreshToken = refreshToken
	return nil
}

func (m *MemoryStore) RemoveUser() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	return nil
}

var _ Store = (*MemoryStore)(nil)
