// Package memo memoizes slow computations in bounded caches.
//
// A Memo pairs a cache.Registry with an Awaiter. Get looks the cache key up
// in the store for the registry key; on a hit the value is returned
// immediately and the awaiter is told to skip work. On a miss the awaiter
// runs the factory (inline with Sync, on a goroutine with Async) and the
// result is stored once it is available.
//
//	reg := cache.NewRegistry[Palette](cache.Options[Palette]{})
//	m := memo.New(reg, memo.NewSync[Palette](), memo.Options{})
//	res := m.Get(ctx, "palette", imageURL, func(ctx context.Context) (Palette, error) {
//	    return extractPalette(ctx, imageURL)
//	}, 0)
//	if res.Err != nil { ... }
//
// With Async the first Get for a key reports Pending; repeat the Get (for
// example from AsyncOptions.OnSettle) to pick up the value from the cache.
package memo
