package tenant

import (
	"context"
	"errors"
	"sync"
	"testing"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/auth"
	"salonpro-gateway/models"
	"salonpro-gateway/store"
)

type fakeAPI struct {
	user     models.User
	meErr    error
	salon    *models.Salon
	salonErr error
}

func (f *fakeAPI) Login(context.Context, string, string) (*apiclient.LoginResponse, error) {
	return &apiclient.LoginResponse{Access: "a", Refresh: "r", User: f.user}, nil
}

func (f *fakeAPI) Me(context.Context) (*models.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	u := f.user
	return &u, nil
}

func (f *fakeAPI) GetSalon(context.Context, models.ID) (*models.Salon, error) {
	if f.salonErr != nil {
		return nil, f.salonErr
	}
	return f.salon, nil
}

var (
	ownSalon = &models.Salon{ID: 1, Name: "Salon Awa", Slug: "salon-awa"}
	tenantX  = models.Salon{ID: 7, Name: "Tenant X", Slug: "tenant-x"}
)

type fixture struct {
	store    *store.SessionStore
	api      *fakeAPI
	auth     *auth.Session
	admin    *Admin
	resolver *Resolver
}

func setup(t *testing.T, backend store.Backend, user models.User) *fixture {
	t.Helper()
	ctx := context.Background()
	st := store.New("sid", backend, nil)
	if err := st.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	api := &fakeAPI{user: user}
	au := auth.NewSession(api, st, nil)
	admin := NewAdmin(st, au)
	r := NewResolver(st, admin, au, api, nil)
	t.Cleanup(r.Close)
	if _, err := au.Login(ctx, user.Email, "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return &fixture{store: st, api: api, auth: au, admin: admin, resolver: r}
}

func superAdmin(salon *models.Salon) models.User {
	return models.User{ID: 1, Email: "root@example.com", Role: models.RoleAdmin, IsSuperuser: true, SalonDetails: salon}
}

func TestResolvePrecedence(t *testing.T) {
	provided := &models.Salon{ID: 3}
	user := &models.User{SalonDetails: ownSalon}
	cases := []struct {
		name     string
		selected *models.Salon
		provided *models.Salon
		user     *models.User
		want     models.ID
	}{
		{"selection wins", &tenantX, provided, user, 7},
		{"provided next", nil, provided, user, 3},
		{"user salon last", nil, nil, user, 1},
		{"nothing", nil, nil, &models.User{}, 0},
		{"no user", nil, nil, nil, 0},
	}
	for _, tc := range cases {
		got := Resolve(tc.selected, tc.provided, tc.user)
		if tc.want == 0 {
			if got != nil {
				t.Fatalf("%s: expected nil, got %+v", tc.name, got)
			}
			continue
		}
		if got == nil || got.ID != tc.want {
			t.Fatalf("%s: expected salon %d, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestSelectionOverridesOwnSalonAndClearFallsBack(t *testing.T) {
	f := setup(t, store.NewMemoryBackend(), superAdmin(ownSalon))
	ctx := context.Background()

	if s, _ := f.resolver.Salon(); s == nil || s.ID != ownSalon.ID {
		t.Fatalf("expected own salon before selection, got %+v", s)
	}
	if err := f.admin.Select(ctx, tenantX); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s, _ := f.resolver.Salon(); s == nil || s.ID != tenantX.ID {
		t.Fatalf("expected selected tenant, got %+v", s)
	}
	if !f.admin.IsViewing(ctx) {
		t.Fatalf("expected viewing mode")
	}

	if err := f.admin.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s, _ := f.resolver.Salon(); s == nil || s.ID != ownSalon.ID {
		t.Fatalf("expected fallback to own salon after clear, got %+v", s)
	}
}

func TestConcurrentChangesSettleOnLatestState(t *testing.T) {
	f := setup(t, store.NewMemoryBackend(), superAdmin(ownSalon))
	ctx := context.Background()
	other := &models.Salon{ID: 2, Name: "Salon Fatou", Slug: "salon-fatou"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = f.admin.Select(ctx, tenantX)
			} else {
				_ = f.admin.Clear(ctx)
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				f.auth.SetSalonDetails(other)
			} else {
				f.auth.SetSalonDetails(ownSalon)
			}
		}(i)
	}
	wg.Wait()

	want := Resolve(f.admin.Selected(ctx), nil, f.auth.User())
	got, _ := f.resolver.Salon()
	if want == nil || got == nil || got.ID != want.ID {
		t.Fatalf("expected resolver to hold salon %+v, got %+v", want, got)
	}
}

func TestSuperAdminWithoutSalonResolvesToNothing(t *testing.T) {
	f := setup(t, store.NewMemoryBackend(), superAdmin(nil))
	ctx := context.Background()
	_ = f.admin.Select(ctx, tenantX)
	_ = f.admin.Clear(ctx)
	if _, err := f.resolver.Salon(); !errors.Is(err, ErrNoTenant) {
		t.Fatalf("expected ErrNoTenant, got %v", err)
	}
	if c := f.resolver.Current(); c.IsLoading || c.Salon != nil {
		t.Fatalf("expected settled empty context, got %+v", c)
	}
}

func TestCorruptSelectionBehavesAsUnset(t *testing.T) {
	backend := store.NewMemoryBackend()
	if err := backend.Save(context.Background(), "sid", store.KeySelectedTenant, "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f := setup(t, backend, superAdmin(ownSalon))

	if s, err := f.resolver.Salon(); err != nil || s.ID != ownSalon.ID {
		t.Fatalf("expected own salon, got %+v, %v", s, err)
	}
	if f.admin.IsViewing(context.Background()) {
		t.Fatalf("expected corrupt selection to read as unset")
	}
	if _, ok := f.store.Get(store.KeySelectedTenant); ok {
		t.Fatalf("expected corrupt value to be removed")
	}
}

func TestOnlySuperAdminSelects(t *testing.T) {
	f := setup(t, store.NewMemoryBackend(), models.User{ID: 2, Role: models.RoleAdmin, SalonDetails: ownSalon})
	if err := f.admin.Select(context.Background(), tenantX); !errors.Is(err, ErrNotSuperAdmin) {
		t.Fatalf("expected ErrNotSuperAdmin, got %v", err)
	}
}

func TestPublicContext(t *testing.T) {
	f := setup(t, store.NewMemoryBackend(), models.User{ID: 2, Role: models.RoleCoiffeur, SalonDetails: ownSalon})
	bySlug := &models.Salon{ID: 9, Slug: "chez-fatou"}
	c := f.resolver.ForPublic(context.Background(), bySlug)
	if !c.IsPublic || c.Salon.ID != 9 {
		t.Fatalf("expected the provided salon, got %+v", c)
	}
}

func TestRefreshSalonSoftFails(t *testing.T) {
	f := setup(t, store.NewMemoryBackend(), superAdmin(ownSalon))
	ctx := context.Background()

	renamed := *ownSalon
	renamed.Name = "Salon Awa & Filles"
	f.api.meErr = errors.New("timeout")
	f.api.salon = &renamed
	f.resolver.RefreshSalon(ctx)
	if s, _ := f.resolver.Salon(); s.Name != renamed.Name {
		t.Fatalf("expected salon endpoint fallback, got %q", s.Name)
	}

	f.api.salonErr = errors.New("timeout")
	f.resolver.RefreshSalon(ctx)
	if s, _ := f.resolver.Salon(); s == nil || s.Name != renamed.Name {
		t.Fatalf("expected last known salon to be kept, got %+v", s)
	}
}
