package store

import (
	"context"
	"strings"
	"testing"

	"salonpro-gateway/models"
)

func newTestStore(t *testing.T, backend Backend) *SessionStore {
	t.Helper()
	s := New("sid-1", backend, nil)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return s
}

func TestSetPersistsAndInitReloads(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := newTestStore(t, backend)

	if err := s.SetTokens(ctx, "acc", "ref"); err != nil {
		t.Fatalf("set tokens: %v", err)
	}
	reloaded := newTestStore(t, backend)
	if reloaded.AccessToken() != "acc" || reloaded.RefreshToken() != "ref" {
		t.Fatalf("expected tokens to survive reload, got %q/%q", reloaded.AccessToken(), reloaded.RefreshToken())
	}

	if err := reloaded.ClearTokens(ctx); err != nil {
		t.Fatalf("clear tokens: %v", err)
	}
	again := newTestStore(t, backend)
	if again.AccessToken() != "" || again.RefreshToken() != "" {
		t.Fatalf("expected tokens cleared")
	}
}

func TestCorruptSelectedTenantIsDiscarded(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	_ = backend.Save(ctx, "sid-1", KeySelectedTenant, "{not json")
	s := newTestStore(t, backend)

	if got := s.SelectedTenant(ctx); got != nil {
		t.Fatalf("expected nil tenant for corrupt value, got %+v", got)
	}
	if _, ok := s.Get(KeySelectedTenant); ok {
		t.Fatalf("expected corrupt value to be removed")
	}
	values, _ := backend.Load(ctx, "sid-1")
	if _, ok := values[KeySelectedTenant]; ok {
		t.Fatalf("expected corrupt value to be removed from backend")
	}
}

func TestSelectedTenantRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, NewMemoryBackend())
	if err := s.SetSelectedTenant(ctx, models.Salon{ID: 7, Name: "Chez Awa", Slug: "chez-awa"}); err != nil {
		t.Fatalf("set tenant: %v", err)
	}
	got := s.SelectedTenant(ctx)
	if got == nil || got.ID != 7 || got.Slug != "chez-awa" {
		t.Fatalf("unexpected tenant %+v", got)
	}
	if err := s.ClearSelectedTenant(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.SelectedTenant(ctx) != nil {
		t.Fatalf("expected no tenant after clear")
	}
}

func TestCorruptThemeIsDiscarded(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	_ = backend.Save(ctx, "sid-1", ThemeKey(3), "[]]")
	s := newTestStore(t, backend)
	if s.TenantTheme(ctx, 3) != nil {
		t.Fatalf("expected corrupt theme to be ignored")
	}
	if err := s.SetTenantTheme(ctx, 3, models.TenantTheme{PrimaryColor: "10 50% 50%"}); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if got := s.TenantTheme(ctx, 3); got == nil || got.PrimaryColor != "10 50% 50%" {
		t.Fatalf("unexpected theme %+v", got)
	}
}

func TestSubscribersSeeChanges(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, NewMemoryBackend())
	var events []string
	unsubscribe := s.Subscribe(func(key, value string, deleted bool) {
		if deleted {
			events = append(events, "-"+key)
			return
		}
		events = append(events, key+"="+value)
	})
	_ = s.Set(ctx, "a", "1")
	_ = s.Delete(ctx, "a")
	_ = s.Delete(ctx, "missing")
	unsubscribe()
	_ = s.Set(ctx, "b", "2")

	if got := strings.Join(events, ","); got != "a=1,-a" {
		t.Fatalf("unexpected events %q", got)
	}
}

func TestSealedBackendEncryptsValues(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryBackend()
	sealed := NewSealed(inner, "top-secret")
	if err := sealed.Save(ctx, "sid", KeyAccessToken, "plain-token"); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, _ := inner.Load(ctx, "sid")
	if strings.Contains(raw[KeyAccessToken], "plain-token") {
		t.Fatalf("expected value to be encrypted at rest")
	}
	values, err := sealed.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if values[KeyAccessToken] != "plain-token" {
		t.Fatalf("expected decrypted token, got %q", values[KeyAccessToken])
	}

	other := NewSealed(inner, "another-secret")
	values, _ = other.Load(ctx, "sid")
	if _, ok := values[KeyAccessToken]; ok {
		t.Fatalf("expected value sealed with another key to be dropped")
	}
}
