package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/organigram/pkg/cache"
	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/observability"
)

// DefaultTTL is how long fetched records stay cached.
const DefaultTTL = 10 * time.Minute

const cacheKeyType = "source"

// Cached serves records from a cache and falls back to the wrapped source
// on a miss. Empty results are never stored, so a freshly populated table
// shows up on the next run.
type Cached struct {
	inner   Source
	cache   cache.Cache
	key     string
	ttl     time.Duration
	refresh bool
	logger  *log.Logger
}

// CachedOption configures [NewCached].
type CachedOption func(*Cached)

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) CachedOption { return func(c *Cached) { c.ttl = ttl } }

// WithRefresh skips the cache lookup but still stores the fresh result.
func WithRefresh(refresh bool) CachedOption { return func(c *Cached) { c.refresh = refresh } }

// WithLogger reports cache failures, which are otherwise ignored.
func WithLogger(l *log.Logger) CachedOption { return func(c *Cached) { c.logger = l } }

// NewCached wraps inner. key identifies the record set, typically
// [cache.SourceKey] of the source URL.
func NewCached(inner Source, c cache.Cache, key string, opts ...CachedOption) *Cached {
	cs := &Cached{inner: inner, cache: c, key: key, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(cs)
	}
	if cs.cache == nil {
		cs.cache = cache.NewNullCache()
	}
	return cs
}

// Name returns the wrapped source's name.
func (c *Cached) Name() string { return c.inner.Name() }

// Fetch returns cached records when available.
func (c *Cached) Fetch(ctx context.Context) ([]hierarchy.Record, error) {
	records, _, err := c.FetchWithCacheInfo(ctx)
	return records, err
}

// FetchWithCacheInfo is like Fetch and also reports whether the records came
// from the cache.
func (c *Cached) FetchWithCacheInfo(ctx context.Context) ([]hierarchy.Record, bool, error) {
	hooks := observability.Cache()

	if !c.refresh {
		data, hit, err := c.cache.Get(ctx, c.key)
		if err != nil {
			c.warn("cache read failed", "error", err)
		}
		if hit {
			var records []hierarchy.Record
			if err := json.Unmarshal(data, &records); err == nil {
				hooks.OnCacheHit(ctx, cacheKeyType)
				return records, true, nil
			}
			c.warn("discarding unreadable cache entry")
		}
		hooks.OnCacheMiss(ctx, cacheKeyType)
	}

	records, err := c.inner.Fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	if len(records) == 0 {
		return records, false, nil
	}

	data, err := json.Marshal(records)
	if err == nil {
		err = c.cache.Set(ctx, c.key, data, c.ttl)
	}
	if err != nil {
		c.warn("cache write failed", "error", err)
	} else {
		hooks.OnCacheSet(ctx, cacheKeyType, len(data))
	}
	return records, false, nil
}

// Close closes the wrapped source. The cache is owned by the caller.
func (c *Cached) Close() error { return c.inner.Close() }

func (c *Cached) warn(msg string, kv ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, kv...)
	}
}

var _ Source = (*Cached)(nil)
