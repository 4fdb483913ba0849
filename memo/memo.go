package memo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IvanBrykalov/memocache/cache"
)

// ErrNoValue may be returned by a Factory to report an absent result:
// nothing is cached and the caller sees a Result with OK false and no error.
var ErrNoValue = errors.New("memo: factory produced no value")

// Options configures a Memo.
type Options struct {
	// Logger receives debug records for factory failures; nil => discard.
	Logger *slog.Logger
}

// Memo serves values from a cache.Registry and falls back to an Awaiter
// to compute missing ones, storing every successful result.
type Memo[V any] struct {
	reg *cache.Registry[V]
	aw  Awaiter[V]
	log *slog.Logger
}

// New binds a registry and an awaiter. A nil awaiter selects Sync.
// It panics if reg is nil.
func New[V any](reg *cache.Registry[V], aw Awaiter[V], opt Options) *Memo[V] {
	if reg == nil {
		panic("memo: nil registry")
	}
	if aw == nil {
		aw = NewSync[V]()
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.DiscardHandler)
	}
	return &Memo[V]{reg: reg, aw: aw, log: opt.Logger}
}

// Get returns the value for cacheKey in the store named registryKey.
//
// A cached value is returned as-is; the awaiter is told to skip the factory
// and any Pending it reports is suppressed. Otherwise the awaiter decides
// when fn runs, and a successful result is Put into the store when it
// arrives. capacity sizes the store on first use (0 => registry default).
//
// Factory errors are returned unchanged and never cached, so the next Get
// for the same key tries again.
func (m *Memo[V]) Get(ctx context.Context, registryKey, cacheKey string, fn Factory[V], capacity int) Result[V] {
	store, err := m.reg.StoreFor(registryKey, capacity)
	if err != nil {
		return Result[V]{Err: err}
	}

	cached, hit := store.Get(cacheKey)
	res := m.aw.Await(ctx, func(ctx context.Context) (V, error) {
		v, err := fn(ctx)
		if err != nil {
			if !errors.Is(err, ErrNoValue) {
				m.log.Debug("memo factory failed",
					slog.String("store", registryKey),
					slog.String("key", cacheKey),
					slog.Any("error", err))
			}
			return v, err
		}
		// The store may have changed since the lookup above (other keys
		// evicted, this one written); Put handles either case.
		store.Put(cacheKey, v)
		return v, nil
	}, AwaitOptions{Deps: []string{registryKey, cacheKey}, Skip: hit})

	if errors.Is(res.Err, ErrNoValue) {
		res = Result[V]{}
	}
	if hit {
		res.Value, res.OK, res.Pending = cached, true, false
	}
	return res
}

// Registry returns the registry backing m.
func (m *Memo[V]) Registry() *cache.Registry[V] { return m.reg }
