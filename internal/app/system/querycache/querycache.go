// Package querycache holds backend listing results between requests.
//
// Entries are keyed by entity, viewer, scope and page. Reads go through
// Fetch, which coalesces concurrent misses for the same key into one
// backend call. Mutations never write entries; they call Invalidate for
// every entity they affect, after the backend has answered and before the
// response is written.
package querycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/labhub/internal/app/system/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Entity is the closed set of cached collections.
type Entity int

const (
	Users Entity = iota + 1
	Labs
	Items
	Members
)

// All lists every entity.
var All = []Entity{Users, Labs, Items, Members}

func (e Entity) String() string {
	switch e {
	case Users:
		return "users"
	case Labs:
		return "labs"
	case Items:
		return "items"
	case Members:
		return "members"
	}
	return fmt.Sprintf("entity(%d)", int(e))
}

// Key identifies one cached result.
//
// Viewer is the signed-in user's id; listings differ per viewer because the
// backend filters by permission. Scope narrows the collection, e.g. the lab
// id for items and members. Page is 1-indexed.
type Key struct {
	Entity Entity
	Viewer string
	Scope  string
	Page   int
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%d", k.Entity, k.Viewer, k.Scope, k.Page)
}

// Config sizes the cache.
type Config struct {
	Size            int           // max entries; <= 0 means 512
	TTL             time.Duration // entry lifetime; <= 0 means until evicted or invalidated
	PrefetchTimeout time.Duration // deadline for background fetches; <= 0 means 10s
}

// Cache is safe for concurrent use.
type Cache struct {
	lru   *expirable.LRU[Key, any]
	group singleflight.Group
	log   *zap.Logger

	mu   sync.Mutex
	gens map[Entity]uint64

	bg              context.Context
	stop            context.CancelFunc
	wg              sync.WaitGroup
	prefetchTimeout time.Duration
}

// New creates a cache.
func New(cfg Config, logger *zap.Logger) *Cache {
	if cfg.Size <= 0 {
		cfg.Size = 512
	}
	if cfg.PrefetchTimeout <= 0 {
		cfg.PrefetchTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bg, stop := context.WithCancel(context.Background())
	return &Cache{
		lru:             expirable.NewLRU[Key, any](cfg.Size, nil, cfg.TTL),
		log:             logger,
		gens:            make(map[Entity]uint64),
		bg:              bg,
		stop:            stop,
		prefetchTimeout: cfg.PrefetchTimeout,
	}
}

// Fetch returns the cached value for key or loads it with fn.
//
// Concurrent callers missing the same key share one call to fn. The loaded
// value is stored only if no Invalidate for key.Entity happened while fn
// was running. Errors are returned to every waiting caller and never cached.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := c.lru.Get(key); ok {
		if t, ok := v.(T); ok {
			metrics.CacheLookup(key.Entity.String(), "hit")
			return t, nil
		}
	}
	metrics.CacheLookup(key.Entity.String(), "miss")

	gen := c.generation(key.Entity)
	v, err, _ := c.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, val)
		return val, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Peek reports whether key currently has an entry.
func (c *Cache) Peek(key Key) bool {
	_, ok := c.lru.Peek(key)
	return ok
}

// Prefetch loads key in the background unless it is already cached.
// The fetch runs under the cache's own context so it outlives the request
// that triggered it; Close cancels it.
func Prefetch[T any](c *Cache, key Key, fn func(context.Context) (T, error)) {
	if c.Peek(key) || c.bg.Err() != nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(c.bg, c.prefetchTimeout)
		defer cancel()
		if _, err := Fetch(ctx, c, key, fn); err != nil {
			c.log.Debug("prefetch failed", zap.String("key", key.String()), zap.Error(err))
		}
	}()
}

// Invalidate drops every entry of the given entities for all viewers and
// scopes.
func (c *Cache) Invalidate(entities ...Entity) {
	if len(entities) == 0 {
		return
	}
	drop := make(map[Entity]bool, len(entities))

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entities {
		if drop[e] {
			continue
		}
		drop[e] = true
		c.gens[e]++
		metrics.CacheInvalidated(e.String())
	}
	for _, k := range c.lru.Keys() {
		if drop[k.Entity] {
			c.lru.Remove(k)
		}
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int { return c.lru.Len() }

// Wait blocks until all in-flight prefetches finish.
func (c *Cache) Wait() { c.wg.Wait() }

// Close cancels background prefetches and waits for them to return.
func (c *Cache) Close() {
	c.stop()
	c.wg.Wait()
}

func (c *Cache) generation(e Entity) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[e]
}

func (c *Cache) store(key Key, gen uint64, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key.Entity] != gen {
		return
	}
	c.lru.Add(key, val)
}
