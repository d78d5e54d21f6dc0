package tokenstore

import (
	"net/http"
	"sync"
)

// MemoryStore holds a single token for the whole process, regardless of the
// request. Useful for tests and one-user tooling.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Get(_ *http.Request) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, m.token != ""
}

func (m *MemoryStore) Set(_ http.ResponseWriter, _ *http.Request, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ http.ResponseWriter, _ *http.Request) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
