package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/memocache/list"
)

// ErrInvalidCapacity is returned when a store is requested with capacity <= 0.
var ErrInvalidCapacity = errors.New("cache: capacity must be > 0")

// BoundedCache keeps at most Capacity entries and evicts in insertion order
// (FIFO): the keys written first are dropped first, regardless of reads.
// Overwriting an existing key keeps its original position.
//
// All methods are safe for concurrent use.
type BoundedCache[V any] struct {
	// ---- guarded by mu ----
	mu     sync.Mutex
	order  *list.IndexedList[string] // oldest first
	values map[string]V

	name     string
	capacity int
	opt      Options[V]
	log      *slog.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
}

// Stats is a point-in-time snapshot of store counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// NewBoundedCache constructs an empty store. name labels metrics and logs
// (the registry passes the registry key). Capacity must be positive.
func NewBoundedCache[V any](name string, capacity int, opt Options[V]) (*BoundedCache[V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	opt = opt.withDefaults()
	return &BoundedCache[V]{
		order:    list.New[string](),
		values:   make(map[string]V, capacity),
		name:     name,
		capacity: capacity,
		opt:      opt,
		log:      opt.Logger.With(slog.String("store", name)),
	}, nil
}

// Get returns the value stored under key. Reads do not affect eviction order.
func (c *BoundedCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	v, ok := c.values[key]
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		c.opt.Metrics.Miss(c.name)
		return v, false
	}
	c.hits.Add(1)
	c.opt.Metrics.Hit(c.name)
	return v, true
}

// Put stores v under key.
//
// A new key is appended as the newest entry; if the store is full the oldest
// keys are evicted first so that at most Capacity entries remain. An existing
// key only has its value replaced.
func (c *BoundedCache[V]) Put(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.values[key]; ok {
		c.values[key] = v
		return
	}

	if n := c.order.Len() - c.capacity + 1; n > 0 {
		for _, old := range c.order.Splice(0, n) {
			c.evictLocked(old, EvictCapacity)
		}
	}
	c.order.Push(key)
	c.values[key] = v
	c.opt.Metrics.Size(c.name, c.order.Len())
}

// Delete removes key and reports whether it was present.
func (c *BoundedCache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.values[key]; !ok {
		return false
	}
	if i := c.order.IndexFunc(func(k string) bool { return k == key }); i >= 0 {
		c.order.Splice(i, 1)
	}
	c.evictLocked(key, EvictExplicit)
	c.opt.Metrics.Size(c.name, c.order.Len())
	return true
}

// Clear removes every entry.
func (c *BoundedCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range c.order.Splice(0, c.order.Len()) {
		c.evictLocked(k, EvictExplicit)
	}
	c.opt.Metrics.Size(c.name, 0)
}

// Keys returns the resident keys, oldest first.
func (c *BoundedCache[V]) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Values()
}

// Len returns the number of resident entries.
func (c *BoundedCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Capacity returns the maximum number of retained entries.
func (c *BoundedCache[V]) Capacity() int { return c.capacity }

// Name returns the label the store was created with.
func (c *BoundedCache[V]) Name() string { return c.name }

// Stats returns hit/miss/eviction counters.
func (c *BoundedCache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicts.Load(),
	}
}

// evictLocked drops key from values (the caller already removed it from
// order) and fires metrics and the OnEvict callback.
func (c *BoundedCache[V]) evictLocked(key string, reason EvictReason) {
	v, ok := c.values[key]
	if !ok {
		return
	}
	delete(c.values, key)
	c.evicts.Add(1)
	c.opt.Metrics.Evict(c.name, reason)
	c.log.Debug("cache entry evicted", slog.String("key", key), slog.String("reason", reason.String()))
	if cb := c.opt.OnEvict; cb != nil {
		cb(key, v, reason)
	}
}
