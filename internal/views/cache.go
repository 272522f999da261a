package views

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrSuperseded is returned to the caller of a fetch whose response arrived
// after a newer fetch of the same view was issued. Its data is discarded.
var ErrSuperseded = errors.New("views: superseded by a newer request")

// Fetcher loads the current data of one view
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	fetch     Fetcher
	issued    uint64 // sequence of the latest request
	loaded    bool
	stale     bool
	value     any
	updatedAt time.Time
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithCacheLogger sets the logger for the cache
func WithCacheLogger(logger *zap.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// Cache holds the last adopted data of each view. Requests for a view are
// numbered; only the response to the latest request is adopted
// (last-request-wins, not last-arrival-wins).
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	logger  *zap.Logger
	now     func() time.Time
}

// NewCache creates an empty Cache
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[Key]*entry),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// entryLocked must be called with mu held
func (c *Cache) entryLocked(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Register installs the fetcher used to refresh key on invalidation without
// loading it
func (c *Cache) Register(key Key, fetch Fetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entryLocked(key).fetch = fetch
}

// Get returns the cached data of key when it is loaded and fresh, otherwise
// it loads it with fetch
func (c *Cache) Get(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.loaded && !e.stale {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()
	return c.Load(ctx, key, fetch)
}

// Load always fetches key. A failed fetch keeps the previous data and its
// staleness.
func (c *Cache) Load(ctx context.Context, key Key, fetch Fetcher) (any, error) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.fetch = fetch
	e.issued++
	seq := e.issued
	c.mu.Unlock()

	v, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != e.issued {
		c.logger.Debug("discarding superseded view response",
			zap.Stringer("view", key),
			zap.Uint64("seq", seq),
			zap.Uint64("latest", e.issued))
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}

	e.value = v
	e.loaded = true
	e.stale = false
	e.updatedAt = c.now()
	return v, nil
}

// Invalidate marks keys stale and refetches each key that has a fetcher, in
// order. Keys never fetched or registered are only marked. Refetch failures
// are joined into the returned error and leave their view stale.
func (c *Cache) Invalidate(ctx context.Context, keys ...Key) error {
	var errs []error
	for _, key := range keys {
		c.mu.Lock()
		e := c.entryLocked(key)
		e.stale = true
		fetch := e.fetch
		c.mu.Unlock()

		if fetch == nil {
			continue
		}
		if _, err := c.Load(ctx, key, fetch); err != nil && !errors.Is(err, ErrSuperseded) {
			c.logger.Warn("refreshing invalidated view failed",
				zap.Stringer("view", key),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("refresh %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// Peek returns the cached data of key without fetching
func (c *Cache) Peek(key Key) (value any, stale bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, found := c.entries[key]
	if !found || !e.loaded {
		return nil, false, false
	}
	return e.value, e.stale, true
}

// Stale reports whether key has been invalidated since it was last adopted
func (c *Cache) Stale(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return ok && e.stale
}

// UpdatedAt returns when the data of key was last adopted
func (c *Cache) UpdatedAt(key Key) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.loaded {
		return time.Time{}, false
	}
	return e.updatedAt, true
}

// Forget drops keys entirely, including their fetchers
func (c *Cache) Forget(keys ...Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		delete(c.entries, key)
	}
}

// Get is the typed form of Cache.Get
func Get[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, erase(fetch))
	return typed[T](key, v, err)
}

// Load is the typed form of Cache.Load
func Load[T any](ctx context.Context, c *Cache, key Key, fetch func(context.Context) (T, error)) (T, error) {
	v, err := c.Load(ctx, key, erase(fetch))
	return typed[T](key, v, err)
}

func erase[T any](fetch func(context.Context) (T, error)) Fetcher {
	return func(ctx context.Context) (any, error) {
		return fetch(ctx)
	}
}

func typed[T any](key Key, v any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("views: %s holds %T, not %T", key, v, zero)
	}
	return t, nil
}
