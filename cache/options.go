package cache

import "log/slog"

// DefaultCapacity is used when a store is requested without an explicit capacity.
const DefaultCapacity = 25

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictCapacity: the oldest entries were trimmed to make room for a new key.
	EvictCapacity EvictReason = iota
	// EvictExplicit: removed by Delete or Clear.
	EvictExplicit
)

// String returns a stable label for the reason.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictExplicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks. Every call carries the
// name (registry key) of the store it originates from.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit(store string)
	Miss(store string)
	Evict(store string, reason EvictReason)
	Size(store string, entries int)
}

// Options configures stores. Zero values are safe; defaults are applied by
// NewBoundedCache and NewRegistry:
//   - Capacity <= 0 => DefaultCapacity (registry only)
//   - nil Metrics   => NoopMetrics
//   - nil Logger    => discard
type Options[V any] struct {
	// Capacity is the registry-wide default for stores requested without one.
	Capacity int

	// OnEvict is called for every removed entry while the store lock is held;
	// keep it lightweight and do not call back into the same store.
	OnEvict func(key string, v V, reason EvictReason)

	Metrics Metrics
	Logger  *slog.Logger
}

func (o Options[V]) withDefaults() Options[V] {
	if o.Capacity <= 0 {
		o.Capacity = DefaultCapacity
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return o
}
