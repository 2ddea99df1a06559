package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Public availability is refetched every minute and considered stale after
// thirty seconds.
const (
	SlotsStaleTime       = 30 * time.Second
	SlotsRefetchInterval = 60 * time.Second
)

type watcher struct {
	refetch  func(context.Context) error
	lastRead time.Time
}

// Poller refetches watched keys on a timer. A key that nobody read for
// longer than the idle window is dropped from the schedule, the way an
// unmounted view stops caring about its query.
type Poller struct {
	cache    *Cache
	interval time.Duration
	idle     time.Duration
	logger   *slog.Logger
	cron     *cron.Cron
	now      func() time.Time

	mu       sync.Mutex
	watchers map[string]*watcher
}

// NewPoller schedules refetches every interval. A zero idle window defaults
// to twice the interval.
func NewPoller(c *Cache, interval, idle time.Duration, logger *slog.Logger) (*Poller, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if idle <= 0 {
		idle = 2 * interval
	}
	p := &Poller{
		cache:    c,
		interval: interval,
		idle:     idle,
		logger:   logger,
		cron:     cron.New(),
		now:      time.Now,
		watchers: make(map[string]*watcher),
	}
	if _, err := p.cron.AddFunc(fmt.Sprintf("@every %s", interval), p.Tick); err != nil {
		return nil, fmt.Errorf("schedule poller: %w", err)
	}
	return p, nil
}

func (p *Poller) Start() { p.cron.Start() }

// Stop halts the schedule and waits for a running tick.
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
}

// Cache returns the cache the poller refreshes.
func (p *Poller) Cache() *Cache { return p.cache }

// Watch reads key like Get and keeps it on the refetch schedule.
func Watch[T any](ctx context.Context, p *Poller, key string, opts Options, fetch func(context.Context) (T, error)) (T, error) {
	p.mu.Lock()
	w, ok := p.watchers[key]
	if !ok {
		w = &watcher{refetch: func(ctx context.Context) error {
			_, err := Get(ctx, p.cache, key, Options{}, fetch)
			return err
		}}
		p.watchers[key] = w
		pollerWatchers.Inc()
	}
	w.lastRead = p.now()
	p.mu.Unlock()
	return Get(ctx, p.cache, key, opts, fetch)
}

// Watching reports whether key is on the schedule.
func (p *Poller) Watching(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.watchers[key]
	return ok
}

// Tick drops idle watchers and refetches the others. It runs on the
// schedule and can be called directly.
func (p *Poller) Tick() {
	now := p.now()
	due := make(map[string]func(context.Context) error)
	p.mu.Lock()
	for key, w := range p.watchers {
		if now.Sub(w.lastRead) > p.idle {
			delete(p.watchers, key)
			pollerWatchers.Dec()
			p.cache.Invalidate(key)
			continue
		}
		due[key] = w.refetch
	}
	p.mu.Unlock()

	for key, refetch := range due {
		ctx, cancel := context.WithTimeout(context.Background(), p.interval)
		if err := refetch(ctx); err != nil {
			p.logger.Warn("poll refetch failed", "key", key, "err", err)
		}
		cancel()
	}
}
