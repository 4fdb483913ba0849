// Package singleflight coalesces concurrent calls that share a key.
package singleflight

import (
	"context"
	"sync"
)

// Group runs fn at most once per key among overlapping callers; the others
// wait for and share the leader's result.
//
// Concurrency notes:
//   - The first caller for a key becomes the leader and runs fn.
//   - Publishing (val, err) happens-before close(done), so followers that
//     return after <-done observe the final values.
//   - A follower whose ctx is cancelled returns ctx.Err() on its own; the
//     leader keeps running fn. Thread ctx into fn to stop the work itself.
//
// The zero value is ready to use.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done    chan struct{} // closed once val/err are set
	val     V
	err     error
	waiters int
}

// Do runs fn for key unless a call for key is already in flight, in which
// case it waits for that call. shared reports whether the result was
// delivered to more than one caller.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.waiters++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, c.err, true
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err(), false
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	g.mu.Lock()
	delete(g.m, key)
	shared = c.waiters > 0
	g.mu.Unlock()
	close(c.done)

	return c.val, c.err, shared
}
