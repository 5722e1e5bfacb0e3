package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in a map. Sessions are lost on restart and
// never expire.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[int64][]byte
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[int64][]byte)}
}

// Get returns a copy of the session of telegramID.
func (m *MemoryStore) Get(_ context.Context, telegramID int64) (*Session, error) {
	m.mu.RLock()
	b, ok := m.data[telegramID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(b)
}

// Put stores a copy of s.
func (m *MemoryStore) Put(_ context.Context, telegramID int64, s *Session) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[telegramID] = b
	m.mu.Unlock()
	return nil
}

// Delete drops the session of telegramID. Deleting a missing session is not
// an error.
func (m *MemoryStore) Delete(_ context.Context, telegramID int64) error {
	m.mu.Lock()
	delete(m.data, telegramID)
	m.mu.Unlock()
	return nil
}

// Len returns the number of active sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
