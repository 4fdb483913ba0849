package memo

import (
	"context"
	"sync"
)

// AsyncOptions configures an Async awaiter.
type AsyncOptions struct {
	// OnSettle is called from the worker goroutine after a factory finishes,
	// successfully or not. Use it to trigger a refresh of whatever is waiting
	// on the value (e.g. re-issue Memo.Get).
	OnSettle func(deps []string, err error)
}

// Async starts the factory on its own goroutine and returns immediately.
//
// While the call runs, Await for the same Deps reports Pending. Once it
// finishes, the next Await returns its outcome (value or error) exactly
// once and forgets it, so a failed computation is retried by the Await
// after that.
type Async[V any] struct {
	mu    sync.Mutex
	calls map[string]*flight[V]
	opt   AsyncOptions
}

type flight[V any] struct {
	deps []string
	done chan struct{} // closed once val/err are set
	val  V
	err  error
}

// NewAsync returns an Async awaiter.
func NewAsync[V any](opt AsyncOptions) *Async[V] {
	return &Async[V]{calls: make(map[string]*flight[V]), opt: opt}
}

// Await reports the state of the computation identified by opts.Deps,
// starting it if nothing is in flight.
//
// With opts.Skip set nothing is started, and a settled outcome for the same
// Deps is discarded since the caller already holds a value.
func (a *Async[V]) Await(ctx context.Context, fn Factory[V], opts AwaitOptions) Result[V] {
	key := depsKey(opts.Deps)

	a.mu.Lock()
	f, ok := a.calls[key]
	if ok {
		select {
		case <-f.done:
			delete(a.calls, key)
			a.mu.Unlock()
			if opts.Skip {
				return Result[V]{}
			}
			if f.err != nil {
				return Result[V]{Err: f.err}
			}
			return Result[V]{Value: f.val, OK: true}
		default:
			a.mu.Unlock()
			if opts.Skip {
				return Result[V]{}
			}
			return Result[V]{Pending: true}
		}
	}
	if opts.Skip {
		a.mu.Unlock()
		return Result[V]{}
	}

	f = &flight[V]{deps: append([]string(nil), opts.Deps...), done: make(chan struct{})}
	a.calls[key] = f
	a.mu.Unlock()

	go a.run(ctx, f, fn)
	return Result[V]{Pending: true}
}

func (a *Async[V]) run(ctx context.Context, f *flight[V], fn Factory[V]) {
	// A pre-cancelled context never reaches the factory.
	select {
	case <-ctx.Done():
		f.err = ctx.Err()
	default:
		f.val, f.err = fn(ctx)
	}
	close(f.done)

	if cb := a.opt.OnSettle; cb != nil {
		cb(f.deps, f.err)
	}
}

// Wait blocks until the computation for deps, if any, has finished or ctx
// is done. It does not consume the outcome.
func (a *Async[V]) Wait(ctx context.Context, deps ...string) error {
	a.mu.Lock()
	f, ok := a.calls[depsKey(deps)]
	a.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-f.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InFlight returns the number of computations started but not yet collected.
func (a *Async[V]) InFlight() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}

var _ Awaiter[int] = (*Async[int])(nil)
