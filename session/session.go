// Package session assembles the per-browser state of the gateway: the
// stored tokens and preferences, the API client bound to them, the query
// cache and the services built on top.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/appointments"
	"salonpro-gateway/auth"
	"salonpro-gateway/cache"
	"salonpro-gateway/models"
	"salonpro-gateway/store"
	"salonpro-gateway/tenant"
	"salonpro-gateway/theme"
)

// Deps are shared by every session.
type Deps struct {
	API      *apiclient.Client
	Backend  store.Backend
	Notifier appointments.Notifier
	Logger   *slog.Logger
	Now      func() time.Time
}

type Session struct {
	ID           string
	Store        *store.SessionStore
	API          *apiclient.Client
	Cache        *cache.Cache
	Auth         *auth.Session
	Admin        *tenant.Admin
	Tenant       *tenant.Resolver
	Theme        *theme.Service
	Appointments *appointments.Manager
	View         *appointments.StateHolder

	lastSeen atomic.Int64
	closers  []func()
}

// open loads the persisted values of id and restores its user.
func open(ctx context.Context, id string, deps Deps) (*Session, error) {
	logger := deps.Logger.With("session", shortID(id))

	st := store.New(id, deps.Backend, logger)
	if err := st.Init(ctx); err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	client := deps.API.WithTokens(st)
	c := cache.New(logger)
	au := auth.NewSession(client, st, logger)
	admin := tenant.NewAdmin(st, au)
	resolver := tenant.NewResolver(st, admin, au, client, logger)

	s := &Session{
		ID:           id,
		Store:        st,
		API:          client,
		Cache:        c,
		Auth:         au,
		Admin:        admin,
		Tenant:       resolver,
		Theme:        theme.NewService(st, client, logger),
		Appointments: appointments.NewManager(client, c, au, resolver, deps.Notifier, logger),
		View:         appointments.NewStateHolder(deps.Now()),
	}

	// Losing the access token, whether through logout or a failed refresh,
	// ends the authenticated session and everything cached under it.
	s.closers = append(s.closers,
		st.Subscribe(func(key, _ string, deleted bool) {
			if key == store.KeyAccessToken && deleted {
				au.Expire()
				c.Invalidate()
			}
		}),
		au.OnUserChange(func(u *models.User) {
			if u == nil {
				c.Invalidate()
			}
		}),
		resolver.Close,
	)

	if err := au.Restore(ctx); err != nil {
		s.Close()
		return nil, err
	}
	s.touch(deps.Now())
	return s, nil
}

// Close detaches the session's listeners. Persisted values stay in the
// backend.
func (s *Session) Close() {
	for _, fn := range s.closers {
		fn()
	}
	s.closers = nil
}

// LastSeen is the time of the last request that used the session.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
