// Package store keeps the per-browser-session values the dashboard used to
// hold in localStorage: API tokens, the super-admin's selected tenant and
// per-tenant theme overrides.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Persisted keys.
const (
	KeyAccessToken    = "access_token"
	KeyRefreshToken   = "refresh_token"
	KeySelectedTenant = "admin_selected_tenant"
	themeKeyPrefix    = "tenant_theme_"
)

// Backend persists the values of browser sessions.
type Backend interface {
	Load(ctx context.Context, sessionID string) (map[string]string, error)
	Save(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
}

// Listener is notified after a key changes. deleted is true when the key
// was removed.
type Listener func(key, value string, deleted bool)

// SessionStore is the in-memory view of one session's persisted values.
// Init reads the backend once; Set and Delete write through.
type SessionStore struct {
	id      string
	backend Backend
	logger  *slog.Logger

	mu     sync.RWMutex
	values map[string]string
	loaded bool

	subMu  sync.Mutex
	nextID int
	subs   map[int]Listener
}

func New(sessionID string, backend Backend, logger *slog.Logger) *SessionStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		id:      sessionID,
		backend: backend,
		logger:  logger,
		values:  map[string]string{},
		subs:    map[int]Listener{},
	}
}

// ID returns the browser session id the store belongs to.
func (s *SessionStore) ID() string { return s.id }

// Init loads the persisted values. Calling it again is a no-op.
func (s *SessionStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return nil
	}
	values, err := s.backend.Load(ctx, s.id)
	if err != nil {
		return fmt.Errorf("load session %s: %w", s.id, err)
	}
	for k, v := range values {
		s.values[k] = v
	}
	s.loaded = true
	return nil
}

func (s *SessionStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set updates the value in memory and persists it. A persistence failure
// is returned but the in-memory value is kept for the running session.
func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	err := s.backend.Save(ctx, s.id, key, value)
	if err != nil {
		s.logger.Error("persist session value", "session", s.id, "key", key, "err", err)
		err = fmt.Errorf("save %s: %w", key, err)
	}
	s.notify(key, value, false)
	return err
}

func (s *SessionStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	_, existed := s.values[key]
	delete(s.values, key)
	s.mu.Unlock()

	err := s.backend.Delete(ctx, s.id, key)
	if err != nil {
		s.logger.Error("delete session value", "session", s.id, "key", key, "err", err)
		err = fmt.Errorf("delete %s: %w", key, err)
	}
	if existed {
		s.notify(key, "", true)
	}
	return err
}

// Subscribe registers fn for every later change and returns a function
// that removes it.
func (s *SessionStore) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *SessionStore) notify(key, value string, deleted bool) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()
	for _, fn := range listeners {
		fn(key, value, deleted)
	}
}
