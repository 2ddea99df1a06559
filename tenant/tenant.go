// Package tenant decides which salon a session is looking at.
package tenant

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"salonpro-gateway/auth"
	"salonpro-gateway/models"
	"salonpro-gateway/store"
)

// ErrNoTenant means no salon could be resolved. Views treat it as "not
// configured" rather than as a failure.
var ErrNoTenant = errors.New("no salon configured")

// ErrNotSuperAdmin is returned when a regular user tries to view another
// salon.
var ErrNotSuperAdmin = errors.New("only a super-admin can select a salon")

// Resolve picks the active salon: the super-admin's selection, else the
// salon the caller provided, else the user's own salon, else nil.
func Resolve(selected, provided *models.Salon, user *models.User) *models.Salon {
	switch {
	case selected != nil:
		return selected
	case provided != nil:
		return provided
	case user != nil && user.SalonDetails != nil:
		return user.SalonDetails
	}
	return nil
}

// Admin is the super-admin "view as" selection of a session.
type Admin struct {
	store *store.SessionStore
	auth  *auth.Session
}

func NewAdmin(st *store.SessionStore, au *auth.Session) *Admin {
	return &Admin{store: st, auth: au}
}

func (a *Admin) Selected(ctx context.Context) *models.Salon {
	return a.store.SelectedTenant(ctx)
}

func (a *Admin) Select(ctx context.Context, salon models.Salon) error {
	if !a.IsSuperAdmin() {
		return ErrNotSuperAdmin
	}
	if salon.ID.IsZero() {
		return errors.New("salon id is required")
	}
	return a.store.SetSelectedTenant(ctx, salon)
}

func (a *Admin) Clear(ctx context.Context) error {
	return a.store.ClearSelectedTenant(ctx)
}

func (a *Admin) IsViewing(ctx context.Context) bool {
	return a.Selected(ctx) != nil
}

func (a *Admin) IsSuperAdmin() bool {
	u := a.auth.User()
	return u != nil && u.IsSuperuser
}

// SalonAPI fetches a salon by id.
type SalonAPI interface {
	GetSalon(ctx context.Context, id models.ID) (*models.Salon, error)
}

// Context is the resolved tenant of a session.
type Context struct {
	Salon     *models.Salon `json:"salon"`
	IsPublic  bool          `json:"isPublic"`
	IsLoading bool          `json:"isLoading"`
}

// Resolver keeps the session's tenant Context current. It recomputes on
// every change of the admin selection or of the logged-in user.
type Resolver struct {
	admin  *Admin
	auth   *auth.Session
	api    SalonAPI
	logger *slog.Logger

	mu      sync.RWMutex
	current Context
	seq     uint64 // last recompute started
	applied uint64 // recompute that produced current
	unsub   []func()
}

func NewResolver(st *store.SessionStore, admin *Admin, au *auth.Session, api SalonAPI, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Resolver{admin: admin, auth: au, api: api, logger: logger}
	r.unsub = append(r.unsub,
		st.Subscribe(func(key, _ string, _ bool) {
			if key == store.KeySelectedTenant {
				r.recompute()
			}
		}),
		au.OnUserChange(func(*models.User) { r.recompute() }),
	)
	r.recompute()
	return r
}

// Close detaches the resolver from the store and the auth session.
func (r *Resolver) Close() {
	for _, fn := range r.unsub {
		fn()
	}
}

func (r *Resolver) Current() Context {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Salon returns the active salon or ErrNoTenant.
func (r *Resolver) Salon() (*models.Salon, error) {
	c := r.Current()
	if c.Salon == nil {
		return nil, ErrNoTenant
	}
	return c.Salon, nil
}

// ForPublic resolves for a public page that already looked its salon up
// by slug. The session's admin selection still wins.
func (r *Resolver) ForPublic(ctx context.Context, provided *models.Salon) Context {
	return Context{
		Salon:    Resolve(r.admin.Selected(ctx), provided, r.auth.User()),
		IsPublic: true,
	}
}

// RefreshSalon re-reads the user's salon from /auth/me/, then from
// /salons/{id}/. Failures are logged and the known salon is kept.
func (r *Resolver) RefreshSalon(ctx context.Context) {
	user := r.auth.User()
	if user == nil || user.SalonDetails == nil || user.SalonDetails.ID.IsZero() {
		return
	}
	if err := r.auth.RefreshUser(ctx); err == nil {
		if u := r.auth.User(); u != nil && u.SalonDetails != nil {
			return
		}
	} else {
		r.logger.Warn("refresh salon via /auth/me/ failed, trying salon endpoint", "err", err)
	}
	salon, err := r.api.GetSalon(ctx, user.SalonDetails.ID)
	if err != nil {
		r.logger.Error("refresh salon failed, keeping current", "salon", user.SalonDetails.ID, "err", err)
		return
	}
	r.auth.SetSalonDetails(salon)
}

func (r *Resolver) recompute() {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	// Reading the selection can delete a corrupt value, which notifies
	// this resolver again; no lock may be held here.
	selected := r.admin.Selected(context.Background())
	user := r.auth.User()
	next := Context{
		Salon:     Resolve(selected, nil, user),
		IsLoading: r.auth.IsLoading(),
	}

	// A recompute that started later read newer state.
	r.mu.Lock()
	if seq > r.applied {
		r.current = next
		r.applied = seq
	}
	r.mu.Unlock()
}
