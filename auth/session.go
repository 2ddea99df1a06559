// Package auth holds the logged-in user of a browser session.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/models"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// API is the part of the booking API the session talks to.
type API interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResponse, error)
	Me(ctx context.Context) (*models.User, error)
}

// Tokens is where the session keeps its API tokens.
type Tokens interface {
	AccessToken() string
	SetTokens(ctx context.Context, access, refresh string) error
	ClearTokens(ctx context.Context) error
}

// Session is the auth state of one browser session. The user is only ever
// derived from a successful /auth/me/ or login round-trip, never from the
// mere presence of a stored token.
type Session struct {
	api    API
	tokens Tokens
	logger *slog.Logger

	mu       sync.RWMutex
	user     *models.User
	restored bool

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(*models.User)
}

func NewSession(api API, tokens Tokens, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{api: api, tokens: tokens, logger: logger, subs: map[int]func(*models.User){}}
}

// Restore re-validates a stored access token. A rejected token clears
// both tokens. Restore runs once; later calls return immediately.
func (s *Session) Restore(ctx context.Context) error {
	s.mu.RLock()
	done := s.restored
	s.mu.RUnlock()
	if done {
		return nil
	}

	var user *models.User
	if s.tokens.AccessToken() != "" {
		u, err := s.api.Me(ctx)
		if err != nil {
			s.logger.Info("stored token rejected, logging out", "err", err)
			if err := s.tokens.ClearTokens(ctx); err != nil {
				s.logger.Warn("clear tokens", "err", err)
			}
		} else {
			user = u
		}
	}

	s.mu.Lock()
	s.restored = true
	s.user = user
	s.mu.Unlock()
	s.notify(user)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.SetTokens(ctx, resp.Access, resp.Refresh); err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}
	user := resp.User
	s.setUser(&user)
	s.logger.Info("user logged in", "user", user.ID, "role", user.Role)
	return s.User(), nil
}

// Logout clears the tokens and the user.
func (s *Session) Logout(ctx context.Context) error {
	err := s.tokens.ClearTokens(ctx)
	s.setUser(nil)
	return err
}

// RefreshUser re-reads the current user. A failure is logged and the
// known user is kept; an expired session logs the user out.
func (s *Session) RefreshUser(ctx context.Context) error {
	user, err := s.api.Me(ctx)
	if err != nil {
		s.logger.Warn("refresh user", "err", err)
		if errors.Is(err, apiclient.ErrSessionExpired) {
			s.setUser(nil)
		}
		return err
	}
	s.setUser(user)
	return nil
}

// SetSalonDetails replaces the embedded salon of the current user.
func (s *Session) SetSalonDetails(salon *models.Salon) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}
	u := *s.user
	u.SalonDetails = salon
	s.user = &u
	s.mu.Unlock()
	s.notify(&u)
}

// Expire drops the user after the API client gave up on the tokens.
func (s *Session) Expire() {
	if s.User() != nil {
		s.setUser(nil)
	}
}

// User returns a copy of the current user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsLoading is true until Restore has run.
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.restored
}

// OnUserChange registers fn for every later change of the user and returns
// a function that removes it. fn receives nil on logout.
func (s *Session) OnUserChange(fn func(*models.User)) func() {
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

func (s *Session) setUser(user *models.User) {
	s.mu.Lock()
	s.user = user
	s.restored = true
	s.mu.Unlock()
	s.notify(user)
}

func (s *Session) notify(user *models.User) {
	s.subMu.Lock()
	fns := make([]func(*models.User), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		if user == nil {
			fn(nil)
			continue
		}
		u := *user
		fn(&u)
	}
}
