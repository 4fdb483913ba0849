package memo

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/IvanBrykalov/memocache/internal/singleflight"
)

// Factory produces a value, possibly slowly (decoding an image, calling a
// remote service). Returning ErrNoValue reports that there is nothing to
// cache without it being a failure.
type Factory[V any] func(ctx context.Context) (V, error)

// Result is the state of a memoized computation as seen by a caller.
// OK is false when no value is available (yet).
type Result[V any] struct {
	Value   V
	OK      bool
	Err     error
	Pending bool
}

// AwaitOptions accompany every Await call.
type AwaitOptions struct {
	// Deps identify the computation; calls with equal Deps refer to the same work.
	Deps []string
	// Skip tells the awaiter a cached value already exists, so fn need not run.
	Skip bool
}

// Awaiter decides when a factory runs and reports its progress. Memo calls
// Await on every Get; implementations must not run fn when Skip is set.
type Awaiter[V any] interface {
	Await(ctx context.Context, fn Factory[V], opts AwaitOptions) Result[V]
}

// depsKey encodes deps into a single map key. Each part is length-prefixed,
// so distinct dep lists never share a key whatever bytes they contain.
func depsKey(deps []string) string {
	var b strings.Builder
	for _, d := range deps {
		b.WriteString(strconv.Itoa(len(d)))
		b.WriteByte(':')
		b.WriteString(d)
	}
	return b.String()
}

// Sync runs the factory inline, on the calling goroutine, and never reports
// Pending. Concurrent callers with equal Deps share one invocation.
type Sync[V any] struct {
	sf        singleflight.Group[string, V]
	coalesced atomic.Uint64
}

// NewSync returns a Sync awaiter.
func NewSync[V any]() *Sync[V] { return &Sync[V]{} }

// Await runs fn unless opts.Skip is set.
func (s *Sync[V]) Await(ctx context.Context, fn Factory[V], opts AwaitOptions) Result[V] {
	if opts.Skip {
		return Result[V]{}
	}
	v, err, shared := s.sf.Do(ctx, depsKey(opts.Deps), func() (V, error) { return fn(ctx) })
	if shared {
		s.coalesced.Add(1)
	}
	if err != nil {
		return Result[V]{Err: err}
	}
	return Result[V]{Value: v, OK: true}
}

// Coalesced returns how many Await calls shared a factory run with another
// caller. The leader of a shared run is counted too.
func (s *Sync[V]) Coalesced() uint64 { return s.coalesced.Load() }

var _ Awaiter[int] = (*Sync[int])(nil)
