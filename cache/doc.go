// Package cache provides BoundedCache, a size-bounded string-keyed store with
// insertion-order (FIFO) eviction, and Registry, which hands out one lazily
// created store per registry key.
//
// Design
//
//   - Storage: each store keeps a map for lookups and a list.IndexedList of
//     keys ordered oldest first. A Put for a new key trims the oldest keys
//     with a single Splice at the head of the list, then appends the new key.
//
//   - Eviction is by insertion order only. Get never reorders; a second Put
//     for an existing key replaces the value but keeps its original position.
//
//   - Registry: stores are created on first StoreFor for a registry key and
//     live as long as the registry. The first caller decides the capacity
//     (0 means Options.Capacity, which defaults to DefaultCapacity = 25).
//     The registry is a plain value: construct one and pass it to whatever
//     needs memoization instead of relying on a package-level global.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals labelled
//     with the store name. NoopMetrics is the default; metrics/prom exports
//     them to Prometheus.
//
//   - Callbacks: Options.OnEvict(key, value, reason) runs for every removed
//     entry (EvictCapacity or EvictExplicit).
//
// Basic usage
//
//	reg := cache.NewRegistry[[]byte](cache.Options[[]byte]{})
//	palettes, err := reg.StoreFor("palette", 0) // capacity 25
//	if err != nil {
//	    return err
//	}
//	palettes.Put("avatar:1", rgb)
//	if v, ok := palettes.Get("avatar:1"); ok {
//	    _ = v
//	}
//
// Thread-safety
//
// BoundedCache and Registry are safe for concurrent use. Each store has its
// own mutex; eviction cost is O(evicted) plus one map delete per key.
package cache
