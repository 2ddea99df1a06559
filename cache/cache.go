// Package cache is the read-through query cache that sits between the
// views and the API client. Entries are keyed by resource and filters,
// concurrent reads of one key share a single fetch, and mutations drop
// the keys they affect.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const sep = "/"

// FetchTimeout bounds one shared fetch.
const FetchTimeout = 30 * time.Second

// Key builds the canonical key for a resource and its filters, for example
// Key("appointments", salonID, "2024-05-02").
func Key(parts ...any) string {
	s := make([]string, len(parts))
	for i, p := range parts {
		s[i] = strings.ReplaceAll(fmt.Sprint(p), sep, "%2F")
	}
	return strings.Join(s, sep)
}

// Options tune one read.
type Options struct {
	// StaleTime is how long a fetched value is served without refetching.
	// Zero always refetches (concurrent callers still share the fetch).
	StaleTime time.Duration
	// KeepPreviousOnError returns the last good value instead of the error
	// when a refetch fails and a value exists.
	KeepPreviousOnError bool
}

type entry struct {
	value     any
	fetchedAt time.Time
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	gen     map[string]uint64
	flights singleflight.Group
	logger  *slog.Logger
	now     func() time.Time
}

func New(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries: make(map[string]*entry),
		gen:     make(map[string]uint64),
		logger:  logger,
		now:     time.Now,
	}
}

// Get returns the cached value of key when it is fresh, and otherwise runs
// fetch. Callers asking for the same key while a fetch is running wait for
// that fetch instead of starting another one.
func Get[T any](ctx context.Context, c *Cache, key string, opts Options, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.fresh(key, opts.StaleTime); ok {
		if t, ok := v.(T); ok {
			cacheRequests.WithLabelValues(resource(key), "hit").Inc()
			return t, nil
		}
	}
	cacheRequests.WithLabelValues(resource(key), "miss").Inc()

	// The fetch is shared, so it runs detached from the caller that started
	// it; every caller still stops waiting when its own context ends.
	detached := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(detached, FetchTimeout)
		defer cancel()
		gen := c.generation(key)
		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, v)
		return v, nil
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	v, err := res.Val, res.Err
	if res.Shared {
		cacheRequests.WithLabelValues(resource(key), "shared").Inc()
	}
	if err != nil {
		cacheRequests.WithLabelValues(resource(key), "error").Inc()
		if opts.KeepPreviousOnError {
			if prev, ok := Peek[T](c, key); ok {
				c.logger.Warn("refetch failed, keeping previous value", "key", key, "err", err)
				return prev, nil
			}
		}
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: key %q holds %T", key, v)
	}
	return t, nil
}

// Peek returns the cached value of key without fetching, fresh or not.
func Peek[T any](c *Cache, key string) (T, bool) {
	var zero T
	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if !ok {
		return zero, false
	}
	t, ok := e.value.(T)
	return t, ok
}

// Set stores v under key, as after a successful fetch.
func (c *Cache) Set(key string, v any) {
	c.store(key, c.generation(key), v)
}

// Invalidate drops key and every key below it. Invalidate("appointments")
// drops all appointment lists and details. A fetch already running for a
// dropped key still answers its callers but is not stored.
func (c *Cache) Invalidate(prefix ...any) {
	p := Key(prefix...)
	c.mu.Lock()
	var dropped []string
	for k := range c.entries {
		if matches(k, p) {
			dropped = append(dropped, k)
		}
	}
	for _, k := range dropped {
		delete(c.entries, k)
	}
	for k := range c.gen {
		if matches(k, p) {
			c.gen[k]++
		}
	}
	c.mu.Unlock()
	for _, k := range dropped {
		c.flights.Forget(k)
	}
	if len(dropped) > 0 {
		c.logger.Debug("cache invalidated", "prefix", p, "keys", len(dropped))
	}
}

// Len reports the number of cached keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) fresh(key string, staleTime time.Duration) (any, bool) {
	if staleTime <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= staleTime {
		return nil, false
	}
	return e.value, true
}

// generation registers key so that Invalidate can tell a fetch it started
// before the invalidation.
func (c *Cache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.gen[key]
	if !ok {
		c.gen[key] = 0
	}
	return g
}

func (c *Cache) store(key string, gen uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[key] != gen {
		return
	}
	c.entries[key] = &entry{value: v, fetchedAt: c.now()}
}

func matches(key, prefix string) bool {
	return prefix == "" || key == prefix || strings.HasPrefix(key, prefix+sep)
}

func resource(key string) string {
	if i := strings.Index(key, sep); i >= 0 {
		return key[:i]
	}
	return key
}
