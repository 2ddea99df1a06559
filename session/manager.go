package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// DefaultIdle is how long an unused session stays in memory.
const DefaultIdle = 30 * time.Minute

var ErrInvalidID = errors.New("invalid session id")

// Manager keeps the open sessions keyed by cookie id. Sessions are opened
// lazily; Evict drops the ones that sit idle and should run periodically.
type Manager struct {
	deps   Deps
	idle   time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	opening  singleflight.Group
}

func NewManager(deps Deps, idle time.Duration) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Manager{
		deps:     deps,
		idle:     idle,
		logger:   deps.Logger,
		sessions: make(map[string]*Session),
	}
}

// Close closes every open session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
	activeSessions.Set(0)
}

// NewID returns a fresh session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns the session for id, opening it on first use. Concurrent
// first requests for the same id share one open.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	now := m.deps.Now()

	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()
	if ok {
		s.touch(now)
		return s, nil
	}

	v, err, _ := m.opening.Do(id, func() (any, error) {
		m.mu.Lock()
		if s, ok := m.sessions[id]; ok {
			m.mu.Unlock()
			return s, nil
		}
		m.mu.Unlock()

		s, err := open(context.WithoutCancel(ctx), id, m.deps)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sessions[id] = s
		activeSessions.Set(float64(len(m.sessions)))
		m.mu.Unlock()
		m.logger.Debug("session opened", "session", shortID(id))
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	s = v.(*Session)
	s.touch(now)
	return s, nil
}

// Evict closes sessions idle for longer than the idle window and returns
// how many were dropped.
func (m *Manager) Evict() int {
	cutoff := m.deps.Now().Add(-m.idle)
	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		m.logger.Info("evicted idle sessions", "count", len(idle))
	}
	return len(idle)
}

// Len reports the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
