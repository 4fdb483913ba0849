// Package prom exports cache.Metrics to Prometheus.
package prom

import (
	"github.com/IvanBrykalov/memocache/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics with Prometheus vectors labelled by store
// (the registry key). Safe for concurrent use.
type Adapter struct {
	hits    *prometheus.CounterVec
	misses  *prometheus.CounterVec
	evicts  *prometheus.CounterVec
	entries *prometheus.GaugeVec
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		}
	}
	a := &Adapter{
		hits:   prometheus.NewCounterVec(opts("hits_total", "Cache hits"), []string{"store"}),
		misses: prometheus.NewCounterVec(opts("misses_total", "Cache misses"), []string{"store"}),
		evicts: prometheus.NewCounterVec(
			opts("evictions_total", "Cache evictions by reason"),
			[]string{"store", "reason"},
		),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        "size_entries",
			Help:        "Number of resident entries",
			ConstLabels: constLabels,
		}, []string{"store"}),
	}
	reg.MustRegister(a.hits, a.misses, a.evicts, a.entries)
	return a
}

// Hit increments the hit counter for store.
func (a *Adapter) Hit(store string) { a.hits.WithLabelValues(store).Inc() }

// Miss increments the miss counter for store.
func (a *Adapter) Miss(store string) { a.misses.WithLabelValues(store).Inc() }

// Evict increments the eviction counter for store with a reason label.
func (a *Adapter) Evict(store string, r cache.EvictReason) {
	a.evicts.WithLabelValues(store, r.String()).Inc()
}

// Size sets the resident entry gauge for store.
func (a *Adapter) Size(store string, entries int) {
	a.entries.WithLabelValues(store).Set(float64(entries))
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
