package memo

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/memocache/cache"
)

func newMemo[V any](aw Awaiter[V]) *Memo[V] {
	return New(cache.NewRegistry[V](cache.Options[V]{}), aw, Options{})
}

func counting[V any](calls *atomic.Int32, v V, err error) Factory[V] {
	return func(context.Context) (V, error) {
		calls.Add(1)
		return v, err
	}
}

func TestMemo_Sync_FactoryRunsOnce(t *testing.T) {
	t.Parallel()

	m := newMemo[string](NewSync[string]())
	var calls atomic.Int32
	fn := counting(&calls, "palette", nil)

	res := m.Get(context.Background(), "palette", "img:1", fn, 0)
	require.NoError(t, res.Err)
	require.True(t, res.OK)
	require.False(t, res.Pending)
	require.Equal(t, "palette", res.Value)

	res = m.Get(context.Background(), "palette", "img:1", fn, 0)
	require.True(t, res.OK)
	require.Equal(t, "palette", res.Value)
	require.Equal(t, int32(1), calls.Load(), "second call must be served from cache")
}

func TestMemo_Sync_ErrorIsNotCached(t *testing.T) {
	t.Parallel()

	m := newMemo[int](NewSync[int]())
	boom := errors.New("decode failed")
	var calls atomic.Int32
	fn := counting(&calls, 0, boom)

	res := m.Get(context.Background(), "r", "k", fn, 0)
	require.ErrorIs(t, res.Err, boom)
	require.False(t, res.OK)

	store, ok := m.Registry().Lookup("r")
	require.True(t, ok)
	_, ok = store.Get("k")
	require.False(t, ok, "a failed factory must not populate the cache")

	res = m.Get(context.Background(), "r", "k", fn, 0)
	require.ErrorIs(t, res.Err, boom)
	require.Equal(t, int32(2), calls.Load(), "next call must retry the factory")
}

func TestMemo_NoValueIsNotCached(t *testing.T) {
	t.Parallel()

	m := newMemo[int](NewSync[int]())
	var calls atomic.Int32
	fn := counting(&calls, 0, ErrNoValue)

	res := m.Get(context.Background(), "r", "k", fn, 0)
	require.NoError(t, res.Err)
	require.False(t, res.OK)
	require.False(t, res.Pending)

	store, _ := m.Registry().Lookup("r")
	require.Equal(t, 0, store.Len())
}

func TestMemo_CapacityAppliesOnFirstUse(t *testing.T) {
	t.Parallel()

	m := newMemo[int](nil)
	for i := 0; i < 5; i++ {
		k := strconv.Itoa(i)
		m.Get(context.Background(), "small", k, func(context.Context) (int, error) { return i, nil }, 2)
	}
	store, ok := m.Registry().Lookup("small")
	require.True(t, ok)
	require.Equal(t, []string{"3", "4"}, store.Keys())
}

func TestMemo_InvalidCapacity(t *testing.T) {
	t.Parallel()

	m := newMemo[int](nil)
	res := m.Get(context.Background(), "r", "k", func(context.Context) (int, error) { return 1, nil }, -1)
	require.ErrorIs(t, res.Err, cache.ErrInvalidCapacity)
}

func TestMemo_Async_PendingThenCached(t *testing.T) {
	t.Parallel()

	aw := NewAsync[string](AsyncOptions{})
	m := newMemo[string](aw)
	var calls atomic.Int32
	release := make(chan struct{})
	fn := func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	res := m.Get(context.Background(), "r", "k", fn, 0)
	require.True(t, res.Pending)
	require.False(t, res.OK)

	res = m.Get(context.Background(), "r", "k", fn, 0)
	require.True(t, res.Pending, "still running")

	close(release)
	require.NoError(t, aw.Wait(context.Background(), "r", "k"))

	res = m.Get(context.Background(), "r", "k", fn, 0)
	require.False(t, res.Pending)
	require.True(t, res.OK)
	require.Equal(t, "v", res.Value)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, 0, aw.InFlight(), "settled flight must be discarded on a cache hit")
}

func TestMemo_Async_ErrorReportedThenRetried(t *testing.T) {
	t.Parallel()

	aw := NewAsync[int](AsyncOptions{})
	m := newMemo[int](aw)
	boom := errors.New("boom")
	var calls atomic.Int32
	fn := counting(&calls, 0, boom)

	require.True(t, m.Get(context.Background(), "r", "k", fn, 0).Pending)
	require.NoError(t, aw.Wait(context.Background(), "r", "k"))

	res := m.Get(context.Background(), "r", "k", fn, 0)
	require.ErrorIs(t, res.Err, boom)
	require.False(t, res.Pending)

	require.True(t, m.Get(context.Background(), "r", "k", fn, 0).Pending, "failed key is retried")
	require.NoError(t, aw.Wait(context.Background(), "r", "k"))
	require.Equal(t, int32(2), calls.Load())
}

// A cached value hides Pending even while a factory for the same key runs.
func TestMemo_Async_CachedValueSuppressesPending(t *testing.T) {
	t.Parallel()

	aw := NewAsync[int](AsyncOptions{})
	m := newMemo[int](aw)
	release := make(chan struct{})
	defer close(release)

	res := m.Get(context.Background(), "r", "k", func(context.Context) (int, error) {
		<-release
		return 2, nil
	}, 0)
	require.True(t, res.Pending)

	store, _ := m.Registry().Lookup("r")
	store.Put("k", 1)

	res = m.Get(context.Background(), "r", "k", func(context.Context) (int, error) { return 3, nil }, 0)
	require.False(t, res.Pending)
	require.True(t, res.OK)
	require.Equal(t, 1, res.Value)
}

// A completion that lands after other keys churned the store still writes.
func TestMemo_Async_LateCompletionStillStores(t *testing.T) {
	t.Parallel()

	aw := NewAsync[int](AsyncOptions{})
	m := newMemo[int](aw)
	release := make(chan struct{})

	res := m.Get(context.Background(), "r", "slow", func(context.Context) (int, error) {
		<-release
		return 99, nil
	}, 2)
	require.True(t, res.Pending)

	store, _ := m.Registry().Lookup("r")
	store.Put("a", 1)
	store.Put("b", 2)
	store.Put("c", 3)

	close(release)
	require.NoError(t, aw.Wait(context.Background(), "r", "slow"))

	v, ok := store.Get("slow")
	require.True(t, ok)
	require.Equal(t, 99, v)
	require.Equal(t, []string{"c", "slow"}, store.Keys())
}

func TestMemo_Async_OnSettleAndCancelledContext(t *testing.T) {
	t.Parallel()

	settled := make(chan error, 1)
	aw := NewAsync[int](AsyncOptions{OnSettle: func(deps []string, err error) {
		settled <- err
	}})
	m := newMemo[int](aw)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int32
	require.True(t, m.Get(ctx, "r", "k", counting(&calls, 1, nil), 0).Pending)

	select {
	case err := <-settled:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("OnSettle not called")
	}
	require.Equal(t, int32(0), calls.Load(), "factory must not run on a cancelled context")

	store, _ := m.Registry().Lookup("r")
	require.Equal(t, 0, store.Len(), "abandoned computation must not be cached")
}

// Concurrent Sync callers for one key share a single factory run.
func TestMemo_Sync_Concurrent(t *testing.T) {
	m := newMemo[string](NewSync[string]())
	var calls atomic.Int32
	fn := func(context.Context) (string, error) {
		calls.Add(1)
		time.Sleep(5 * time.Millisecond)
		return "v", nil
	}

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			res := m.Get(context.Background(), "r", "k", fn, 0)
			if res.Err != nil {
				return res.Err
			}
			if res.Value != "v" {
				return errors.New("unexpected value " + res.Value)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.LessOrEqual(t, calls.Load(), int32(32))
	require.GreaterOrEqual(t, calls.Load(), int32(1))

	before := calls.Load()
	m.Get(context.Background(), "r", "k", fn, 0)
	require.Equal(t, before, calls.Load(), "settled key must be a pure cache hit")
}

// Registry and cache keys containing NUL must not share a computation.
func TestMemo_Sync_KeysWithSeparatorBytesStayDistinct(t *testing.T) {
	t.Parallel()

	m := newMemo[string](NewSync[string]())
	started := make(chan struct{})
	release := make(chan struct{})

	first := make(chan Result[string], 1)
	go func() {
		first <- m.Get(context.Background(), "a\x00b", "c", func(context.Context) (string, error) {
			close(started)
			<-release
			return "A", nil
		}, 0)
	}()
	<-started

	res := m.Get(context.Background(), "a", "b\x00c", func(context.Context) (string, error) {
		return "B", nil
	}, 0)
	close(release)

	require.NoError(t, res.Err)
	require.True(t, res.OK)
	require.Equal(t, "B", res.Value)
	store, ok := m.Registry().Lookup("a")
	require.True(t, ok)
	v, ok := store.Get("b\x00c")
	require.True(t, ok, "the second key must be written to its own store")
	require.Equal(t, "B", v)

	require.Equal(t, "A", (<-first).Value)
	store, _ = m.Registry().Lookup("a\x00b")
	v, ok = store.Get("c")
	require.True(t, ok)
	require.Equal(t, "A", v)
}

func TestNew_NilRegistryPanics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { New[int](nil, nil, Options{}) })
}
