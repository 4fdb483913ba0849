package cache

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Registry maps registry keys to lazily created stores, one per logical
// cache. Stores are never removed; a registry lives as long as whatever
// holds it (typically the process).
//
// All methods are safe for concurrent use.
type Registry[V any] struct {
	mu     sync.Mutex
	stores map[string]*BoundedCache[V]
	opt    Options[V]
}

// NewRegistry constructs an empty registry. opt is applied to every store it
// creates; opt.Capacity is the default for StoreFor calls with capacity 0.
func NewRegistry[V any](opt Options[V]) *Registry[V] {
	return &Registry[V]{
		stores: make(map[string]*BoundedCache[V]),
		opt:    opt.withDefaults(),
	}
}

// StoreFor returns the store for registryKey, creating it on first use.
//
// The capacity of the first successful call wins; later values are ignored.
// capacity == 0 selects the registry default, capacity < 0 is rejected with
// ErrInvalidCapacity (and nothing is created).
func (r *Registry[V]) StoreFor(registryKey string, capacity int) (*BoundedCache[V], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[registryKey]; ok {
		return s, nil
	}
	if capacity == 0 {
		capacity = r.opt.Capacity
	}
	s, err := NewBoundedCache(registryKey, capacity, r.opt)
	if err != nil {
		return nil, fmt.Errorf("registry %q: %w", registryKey, err)
	}
	r.stores[registryKey] = s
	r.opt.Logger.Debug("cache store created",
		slog.String("store", registryKey), slog.Int("capacity", capacity))
	return s, nil
}

// Lookup returns the store for registryKey without creating it.
func (r *Registry[V]) Lookup(registryKey string) (*BoundedCache[V], bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[registryKey]
	return s, ok
}

// Keys returns the registry keys of all created stores, sorted.
func (r *Registry[V]) Keys() []string {
	r.mu.Lock()
	keys := make([]string, 0, len(r.stores))
	for k := range r.stores {
		keys = append(keys, k)
	}
	r.mu.Unlock()
	slices.Sort(keys)
	return keys
}

// Len returns the number of created stores.
func (r *Registry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
