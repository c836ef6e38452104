// Package cache is the in-memory query cache shared by the catalog reads and
// the mutation coordinator.
//
// Values are treated as immutable: writers store a new value instead of
// editing the one they read. Every write bumps a version so a writer that
// started from an older read can detect it lost a race.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const (
	DefaultStaleTime = 10 * time.Second
	DefaultGCTime    = 5 * time.Minute
)

type item[V any] struct {
	value     V
	version   uint64
	updatedAt time.Time
}

// Snapshot is a point-in-time copy of one key, used to roll back writes
type Snapshot[V any] struct {
	Value   V
	Present bool
	Version uint64
	Fresh   bool
}

// Cache keeps versioned values in a ttlcache. Reads touch the entry, so a key
// is evicted once nobody has read or written it for the GC time. mu makes
// version checks and writes atomic with respect to each other.
type Cache[V any] struct {
	mu        sync.Mutex
	items     *ttlcache.Cache[string, *item[V]]
	version   uint64
	staleTime time.Duration
	now       func() time.Time
}

type Option func(*options)

type options struct {
	staleTime time.Duration
	gcTime    time.Duration
	now       func() time.Time
}

// WithStaleTime sets how long a value counts as fresh after it was written
func WithStaleTime(d time.Duration) Option {
	return func(o *options) { o.staleTime = d }
}

// WithGCTime sets how long an unread value survives before it is evicted.
// Zero or less keeps values until they are invalidated.
func WithGCTime(d time.Duration) Option {
	return func(o *options) { o.gcTime = d }
}

// WithClock replaces time.Now for freshness checks, for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New[V any](opts ...Option) *Cache[V] {
	o := options{staleTime: DefaultStaleTime, gcTime: DefaultGCTime, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	ttl := o.gcTime
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}

	return &Cache[V]{
		items:     ttlcache.New[string, *item[V]](ttlcache.WithTTL[string, *item[V]](ttl)),
		staleTime: o.staleTime,
		now:       o.now,
	}
}

// Get returns the cached value whether or not it is stale
func (c *Cache[V]) Get(key string) (V, bool) {
	s := c.Snapshot(key)
	return s.Value, s.Present
}

// Snapshot captures the value, version and freshness of key
func (c *Cache[V]) Snapshot(key string) Snapshot[V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.lookupLocked(key)
	if !ok {
		return Snapshot[V]{}
	}
	return Snapshot[V]{
		Value:   it.value,
		Present: true,
		Version: it.version,
		Fresh:   c.now().Sub(it.updatedAt) < c.staleTime,
	}
}

// Set stores value under key and returns the new version
func (c *Cache[V]) Set(key string, value V) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLocked(key, value)
}

// CompareAndSwap stores value only if key still holds version. A version of
// 0 means the key must be absent.
func (c *Cache[V]) CompareAndSwap(key string, version uint64, value V) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.lookupLocked(key)
	switch {
	case !ok && version != 0:
		return 0, false
	case ok && it.version != version:
		return it.version, false
	}
	return c.setLocked(key, value), true
}

// Update applies fn to the current value under the write lock. fn returns
// the replacement and whether to store it.
func (c *Cache[V]) Update(key string, fn func(current V, present bool) (V, bool)) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var current V
	it, present := c.lookupLocked(key)
	if present {
		current = it.value
	}
	next, store := fn(current, present)
	if !store {
		return 0, false
	}
	return c.setLocked(key, next), true
}

// Restore puts key back to a previously captured snapshot
func (c *Cache[V]) Restore(key string, s Snapshot[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !s.Present {
		c.items.Delete(key)
		return
	}
	c.setLocked(key, s.Value)
}

// Invalidate drops key so the next read goes back to the source
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items.Delete(key)
}

// Start evicts idle keys as they expire. It blocks until Stop is called.
func (c *Cache[V]) Start() {
	c.items.Start()
}

// Stop ends a running Start
func (c *Cache[V]) Stop() {
	c.items.Stop()
}

// Len returns the number of cached keys, including expired ones Start has
// not evicted yet
func (c *Cache[V]) Len() int {
	return c.items.Len()
}

// lookupLocked reads key and extends its lifetime. Expired keys read as
// absent even before eviction runs.
func (c *Cache[V]) lookupLocked(key string) (*item[V], bool) {
	entry := c.items.Get(key)
	if entry == nil {
		return nil, false
	}
	return entry.Value(), true
}

func (c *Cache[V]) setLocked(key string, value V) uint64 {
	c.version++
	c.items.Set(key, &item[V]{
		value:     value,
		version:   c.version,
		updatedAt: c.now(),
	}, ttlcache.DefaultTTL)
	return c.version
}

// RunUntil runs eviction until ctx is done
func (c *Cache[V]) RunUntil(ctx context.Context) {
	go c.Start()
	<-ctx.Done()
	c.Stop()
}
