package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps sessions in process memory. Values are lost on
// restart.
type MemoryBackend struct {
	mu       sync.Mutex
	sessions map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{sessions: map[string]map[string]string{}}
}

func (m *MemoryBackend) Load(_ context.Context, sessionID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.sessions[sessionID]))
	for k, v := range m.sessions[sessionID] {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryBackend) Save(_ context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	values, ok := m.sessions[sessionID]
	if !ok {
		values = map[string]string{}
		m.sessions[sessionID] = values
	}
	values[key] = value
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, sessionID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions[sessionID], key)
	return nil
}
