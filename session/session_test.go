package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/cache"
	"salonpro-gateway/store"
)

const validToken = "good-token"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T) (*Manager, *store.MemoryBackend, *clock, *atomic.Int32) {
	t.Helper()
	var meHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		meHits.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail":"Token invalide"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":5,"email":"awa@salon.test","first_name":"Awa","role":"ADMIN","salon":1,"is_active":true}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	backend := store.NewMemoryBackend()
	clk := &clock{now: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	m := NewManager(Deps{
		API:     apiclient.New(srv.URL+"/api/v1", nil, nil),
		Backend: backend,
		Now:     clk.Now,
	}, 10*time.Minute)
	t.Cleanup(m.Close)
	return m, backend, clk, &meHits
}

func TestGetRejectsMalformedIDs(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	if _, err := m.Get(context.Background(), "not-a-uuid"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestGetRestoresStoredLogin(t *testing.T) {
	m, backend, _, meHits := newTestManager(t)
	id := NewID()
	backend.Save(context.Background(), id, store.KeyAccessToken, validToken)

	s, err := m.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	u := s.Auth.User()
	if u == nil || u.ID != 5 {
		t.Fatalf("expected restored user 5, got %+v", u)
	}
	if s.Auth.IsLoading() {
		t.Fatalf("session should be restored")
	}

	again, err := m.Get(context.Background(), id)
	if err != nil || again != s {
		t.Fatalf("expected the same session back, got %p (%v)", again, err)
	}
	if meHits.Load() != 1 {
		t.Fatalf("expected a single /auth/me/ call, got %d", meHits.Load())
	}
}

func TestRejectedStoredTokenIsCleared(t *testing.T) {
	m, backend, _, _ := newTestManager(t)
	id := NewID()
	backend.Save(context.Background(), id, store.KeyAccessToken, "stale")

	s, err := m.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if s.Auth.IsAuthenticated() {
		t.Fatalf("a rejected token must not authenticate")
	}
	vals, _ := backend.Load(context.Background(), id)
	if _, ok := vals[store.KeyAccessToken]; ok {
		t.Fatalf("rejected token still persisted: %v", vals)
	}
}

func TestConcurrentFirstRequestsShareOneSession(t *testing.T) {
	m, backend, _, meHits := newTestManager(t)
	id := NewID()
	backend.Save(context.Background(), id, store.KeyAccessToken, validToken)

	var wg sync.WaitGroup
	got := make([]*Session, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Get(context.Background(), id)
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			got[i] = s
		}(i)
	}
	wg.Wait()
	for _, s := range got[1:] {
		if s != got[0] {
			t.Fatalf("concurrent Get returned different sessions")
		}
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", m.Len())
	}
	if meHits.Load() != 1 {
		t.Fatalf("expected a single restore, got %d", meHits.Load())
	}
}

func TestClearingTokensLogsOutAndDropsCache(t *testing.T) {
	m, backend, _, _ := newTestManager(t)
	id := NewID()
	backend.Save(context.Background(), id, store.KeyAccessToken, validToken)
	s, err := m.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	s.Cache.Set(cache.Key("clients", 1), []string{"cached"})

	if err := s.Store.ClearTokens(context.Background()); err != nil {
		t.Fatalf("ClearTokens: %v", err)
	}
	if s.Auth.IsAuthenticated() {
		t.Fatalf("user should be dropped once the access token is gone")
	}
	if s.Cache.Len() != 0 {
		t.Fatalf("expected an empty cache, got %d entries", s.Cache.Len())
	}
}

func TestIdleSessionsAreEvictedAndReloaded(t *testing.T) {
	m, backend, clk, meHits := newTestManager(t)
	idle, busy := NewID(), NewID()
	backend.Save(context.Background(), idle, store.KeyAccessToken, validToken)

	first, err := m.Get(context.Background(), idle)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := m.Get(context.Background(), busy); err != nil {
		t.Fatalf("Get: %v", err)
	}

	clk.Advance(8 * time.Minute)
	m.Get(context.Background(), busy)
	clk.Advance(3 * time.Minute)

	if n := m.Evict(); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if m.Len() != 1 {
		t.Fatalf("expected the busy session to stay, got %d sessions", m.Len())
	}

	again, err := m.Get(context.Background(), idle)
	if err != nil {
		t.Fatalf("Get after eviction: %v", err)
	}
	if again == first {
		t.Fatalf("expected a freshly opened session")
	}
	if !again.Auth.IsAuthenticated() {
		t.Fatalf("persisted token should restore the user after eviction")
	}
	if meHits.Load() != 2 {
		t.Fatalf("expected one restore per open, got %d", meHits.Load())
	}
}
