// Command bench drives a synthetic memoization workload (palette extraction
// over a Zipf-distributed set of image keys) and exposes Prometheus metrics
// and optional pprof endpoints.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/memocache/cache"
	pmet "github.com/IvanBrykalov/memocache/metrics/prom"
	"github.com/IvanBrykalov/memocache/memo"
)

func main() {
	app := &cli.App{
		Name:   "bench",
		Usage:  "memoized computation workload against bounded FIFO caches",
		Flags:  flags,
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)
	log.Info("starting", slog.Any("config", cfg))

	// ---- pprof server (on DefaultServeMux) ----
	if cfg.PprofAddr != "" {
		go func() {
			log.Info("pprof: serving", slog.String("addr", cfg.PprofAddr))
			log.Warn("pprof server stopped", slog.Any("error", http.ListenAndServe(cfg.PprofAddr, nil)))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "memocache", "bench", nil)
	if cfg.MetricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info("metrics: serving", slog.String("addr", cfg.MetricsAddr))
			log.Warn("metrics server stopped", slog.Any("error", http.ListenAndServe(cfg.MetricsAddr, nil)))
		}()
	}

	latency, err := time.ParseDuration(cfg.Latency)
	if err != nil {
		return fmt.Errorf("latency: %w", err)
	}
	duration, err := time.ParseDuration(cfg.Duration)
	if err != nil {
		return fmt.Errorf("duration: %w", err)
	}

	// ---- Build registry + memo ----
	reg := cache.NewRegistry[palette](cache.Options[palette]{
		Capacity: cfg.Capacity,
		Metrics:  metrics,
		Logger:   log,
	})
	var aw memo.Awaiter[palette]
	var syncAw *memo.Sync[palette]
	switch cfg.Awaiter {
	case "sync":
		syncAw = memo.NewSync[palette]()
		aw = syncAw
	case "async":
		aw = memo.NewAsync[palette](memo.AsyncOptions{})
	default:
		return fmt.Errorf("unknown awaiter: %q (use sync or async)", cfg.Awaiter)
	}
	m := memo.New(reg, aw, memo.Options{Logger: log})

	// ---- Load generation ----
	var total, served, pending, computed, failed uint64
	runCtx, cancel := context.WithTimeout(ctx.Context, duration)
	defer cancel()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	keysMax := uint64(max(cfg.Keys-1, 1))
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(runCtx)
	for w := 0; w < workers; w++ {
		seed := cfg.Seed + int64(w)*9973
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(seed))
			zipf := rand.NewZipf(r, cfg.ZipfS, cfg.ZipfV, keysMax)
			for gctx.Err() == nil {
				registryKey := "palette:" + strconv.Itoa(r.Intn(max(cfg.Registries, 1)))
				key := "img:" + strconv.FormatUint(zipf.Uint64(), 10)
				fail := r.Intn(100) < cfg.FailPct
				factory := func(ctx context.Context) (palette, error) {
					atomic.AddUint64(&computed, 1)
					return extract(ctx, key, latency, fail)
				}

				res := m.Get(gctx, registryKey, key, factory, 0)
				atomic.AddUint64(&total, 1)
				switch {
				case res.OK:
					atomic.AddUint64(&served, 1)
				case res.Pending:
					atomic.AddUint64(&pending, 1)
				case res.Err != nil:
					atomic.AddUint64(&failed, 1)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	servedN := atomic.LoadUint64(&served)
	servedRate := 0.0
	if ops > 0 {
		servedRate = float64(servedN) / float64(ops) * 100
	}
	fmt.Printf("awaiter=%s cap=%d registries=%d workers=%d keys=%d dur=%v seed=%d\n",
		cfg.Awaiter, cfg.Capacity, cfg.Registries, workers, cfg.Keys, elapsed, cfg.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  served=%d (%.2f%%)  pending=%d  failed=%d  computed=%d\n",
		ops, float64(ops)/elapsed.Seconds(), servedN, servedRate,
		atomic.LoadUint64(&pending), atomic.LoadUint64(&failed), atomic.LoadUint64(&computed))
	if syncAw != nil {
		fmt.Printf("coalesced=%d\n", syncAw.Coalesced())
	}
	for _, k := range reg.Keys() {
		s, _ := reg.Lookup(k)
		st := s.Stats()
		fmt.Printf("  %-12s len=%d/%d hits=%d misses=%d evictions=%d\n",
			k, s.Len(), s.Capacity(), st.Hits, st.Misses, st.Evictions)
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
