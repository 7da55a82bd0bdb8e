package search

import (
	"context"
	"slices"
	"sync"
	"time"
)

// SlugLoader fetches the current set of author slugs.
type SlugLoader func(ctx context.Context) ([]string, error)

// SlugCache holds the author slug universe for a fixed TTL. It is an
// ordinary value owned by whoever constructs it; ranking functions never
// reach into it.
type SlugCache struct {
	load SlugLoader
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	slugs     []string
	expiresAt time.Time
	loaded    bool
	// held is set once any load has succeeded; Invalidate leaves it.
	held bool

	onRefresh   func(count int)
	onLoadError func(err error)
}

// CacheOption configures a SlugCache.
type CacheOption func(*SlugCache)

// WithClock overrides the cache clock (tests).
func WithClock(now func() time.Time) CacheOption {
	return func(c *SlugCache) { c.now = now }
}

// WithRefreshHook is called after every successful load with the slug count.
func WithRefreshHook(fn func(count int)) CacheOption {
	return func(c *SlugCache) { c.onRefresh = fn }
}

// WithLoadErrorHook is called when Get serves stale slugs because the
// loader failed.
func WithLoadErrorHook(fn func(err error)) CacheOption {
	return func(c *SlugCache) { c.onLoadError = fn }
}

// NewSlugCache creates a cache that reloads through load once ttl has
// elapsed since the last successful load.
func NewSlugCache(load SlugLoader, ttl time.Duration, opts ...CacheOption) *SlugCache {
	c := &SlugCache{load: load, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached slugs, loading them first when the cache is empty
// or expired. If that load fails after an earlier one succeeded, Get
// returns the previous slugs and reports the error to the load error hook.
// The returned slice must not be modified.
func (c *SlugCache) Get(ctx context.Context) ([]string, error) {
	c.mu.RLock()
	if c.fresh() {
		slugs := c.slugs
		c.mu.RUnlock()
		return slugs, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh() {
		return c.slugs, nil
	}
	slugs, err := c.refreshLocked(ctx)
	if err != nil && c.held {
		if c.onLoadError != nil {
			c.onLoadError(err)
		}
		return c.slugs, nil
	}
	return slugs, err
}

// Refresh reloads the slugs regardless of expiry. Unlike Get it returns
// the loader error; the held slugs stay in place for later Gets.
func (c *SlugCache) Refresh(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// Invalidate marks the cache expired; the next Get reloads.
func (c *SlugCache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

// ExpiresAt reports when the current slugs go stale. Zero when nothing
// has been loaded.
func (c *SlugCache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

func (c *SlugCache) fresh() bool {
	return c.loaded && c.now().Before(c.expiresAt)
}

// refreshLocked leaves the held slugs untouched when the loader fails.
func (c *SlugCache) refreshLocked(ctx context.Context) ([]string, error) {
	slugs, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	c.slugs = slices.Clone(slugs)
	c.loaded = true
	c.held = true
	c.expiresAt = c.now().Add(c.ttl)
	if c.onRefresh != nil {
		c.onRefresh(len(c.slugs))
	}
	return c.slugs, nil
}
