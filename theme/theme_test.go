package theme

import (
	"context"
	"errors"
	"strings"
	"testing"

	"salonpro-gateway/models"
	"salonpro-gateway/store"
)

type fakeUpdater struct {
	err   error
	calls int
}

func (f *fakeUpdater) UpdateSalonTheme(_ context.Context, id models.ID, theme models.TenantTheme) (*models.Salon, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Salon{ID: id, Theme: &theme}, nil
}

func newService(t *testing.T, backend store.Backend, api SalonUpdater) (*Service, *store.SessionStore) {
	t.Helper()
	st := store.New("sid", backend, nil)
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return NewService(st, api, nil), st
}

func TestMergeKeepsDefaultsForEmptyFields(t *testing.T) {
	got := Merge(Default, &models.TenantTheme{PrimaryColor: "200 50% 40%", AccentColor: "  "})
	if got.PrimaryColor != "200 50% 40%" || got.AccentColor != Default.AccentColor || got.LinkColor != Default.LinkColor {
		t.Fatalf("unexpected merge %+v", got)
	}
	if Merge(Default, nil) != Default {
		t.Fatalf("expected nil overlay to keep base")
	}
}

func TestCSSMapsBaseVariables(t *testing.T) {
	css := CSS(models.TenantTheme{PrimaryColor: "1 2% 3%", ButtonColor: "4 5% 6%"})
	for _, want := range []string{"--tenant-primary: 1 2% 3%;", "--primary: 1 2% 3%;", "--tenant-button: 4 5% 6%;"} {
		if !strings.Contains(css, want) {
			t.Fatalf("expected %q in\n%s", want, css)
		}
	}
	if strings.Contains(css, "--secondary") {
		t.Fatalf("expected unset colors to be skipped:\n%s", css)
	}
}

func TestLoadPrecedence(t *testing.T) {
	backend := store.NewMemoryBackend()
	_ = backend.Save(context.Background(), "sid", store.ThemeKey(3), `{"primaryColor":"10 10% 10%"}`)
	svc, _ := newService(t, backend, &fakeUpdater{})
	ctx := context.Background()

	if got := svc.Load(ctx, nil); got != Default {
		t.Fatalf("expected defaults without salon")
	}
	if got := svc.Load(ctx, &models.Salon{ID: 3}); got.PrimaryColor != "10 10% 10%" {
		t.Fatalf("expected stored fallback, got %+v", got)
	}
	withTheme := &models.Salon{ID: 3, Theme: &models.TenantTheme{PrimaryColor: "20 20% 20%"}}
	if got := svc.Load(ctx, withTheme); got.PrimaryColor != "20 20% 20%" {
		t.Fatalf("expected salon theme to win, got %+v", got)
	}
}

func TestCorruptFallbackIsIgnored(t *testing.T) {
	backend := store.NewMemoryBackend()
	_ = backend.Save(context.Background(), "sid", store.ThemeKey(3), `oops`)
	svc, st := newService(t, backend, &fakeUpdater{})
	if got := svc.Load(context.Background(), &models.Salon{ID: 3}); got != Default {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if _, ok := st.Get(store.ThemeKey(3)); ok {
		t.Fatalf("expected corrupt fallback to be removed")
	}
}

func TestUpdateSoftFailsOnServer(t *testing.T) {
	api := &fakeUpdater{err: errors.New("403")}
	svc, st := newService(t, store.NewMemoryBackend(), api)
	salon := &models.Salon{ID: 5}

	got, saved, err := svc.Update(context.Background(), salon, models.TenantTheme{AccentColor: "40 80% 50%"})
	if err != nil || saved != nil || api.calls != 1 {
		t.Fatalf("expected soft failure, got %v, %+v", err, saved)
	}
	if got.AccentColor != "40 80% 50%" || got.PrimaryColor != Default.PrimaryColor {
		t.Fatalf("unexpected theme %+v", got)
	}
	if fb := st.TenantTheme(context.Background(), 5); fb == nil || fb.AccentColor != "40 80% 50%" {
		t.Fatalf("expected local fallback, got %+v", fb)
	}

	if svc.Reset(context.Background(), salon) != Default {
		t.Fatalf("expected defaults after reset")
	}
	if st.TenantTheme(context.Background(), 5) != nil {
		t.Fatalf("expected fallback cleared")
	}
}

func TestUpdateRejectsInjection(t *testing.T) {
	svc, _ := newService(t, store.NewMemoryBackend(), &fakeUpdater{})
	_, _, err := svc.Update(context.Background(), &models.Salon{ID: 1}, models.TenantTheme{PrimaryColor: "red;} body{display:none"})
	if err == nil {
		t.Fatalf("expected invalid value to be rejected")
	}
}
