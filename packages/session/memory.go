package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory
type MemoryStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

func (m *MemoryStore) Save(ctx context.Context, owner string, s *Session) error {
	if s == nil {
		return ErrNilSession
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[owner] = clone(s)
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, owner string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[owner]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *MemoryStore) Delete(ctx context.Context, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, owner)
	return nil
}

func clone(s *Session) *Session {
	c := *s
	c.Cookies = make(map[string]string, len(s.Cookies))
	for k, v := range s.Cookies {
		c.Cookies[k] = v
	}
	return &c
}
