package main

import (
	"context"
	"errors"
	"hash/fnv"
	"time"
)

// palette is the dominant colors of an image, as packed 0xRRGGBB values.
type palette []uint32

var errDecode = errors.New("bench: image decode failed")

// extract stands in for downloading and quantizing an image: it waits for
// latency (or ctx) and derives a stable five-color palette from key.
func extract(ctx context.Context, key string, latency time.Duration, fail bool) (palette, error) {
	t := time.NewTimer(latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
	}
	if fail {
		return nil, errDecode
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	seed := h.Sum64()
	p := make(palette, 5)
	for i := range p {
		p[i] = uint32(seed>>(i*8)) & 0xFFFFFF
	}
	return p, nil
}
