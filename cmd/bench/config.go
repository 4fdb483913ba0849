package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime"

	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

// benchConfig is the full workload description. It can be loaded from a TOML
// file (--config); command-line flags that are set explicitly override it.
type benchConfig struct {
	Capacity   int
	Registries int
	Awaiter    string

	Workers  int
	Duration string
	Keys     int
	ZipfS    float64
	ZipfV    float64
	Seed     int64
	Latency  string
	FailPct  int

	MetricsAddr string
	PprofAddr   string
	LogLevel    string
}

var defaultConfig = benchConfig{
	Capacity:    25,
	Registries:  4,
	Awaiter:     "sync",
	Workers:     2 * runtime.GOMAXPROCS(0),
	Duration:    "10s",
	Keys:        1_000,
	ZipfS:       1.1,
	ZipfV:       1.0,
	Latency:     "2ms",
	FailPct:     0,
	MetricsAddr: ":8080",
	LogLevel:    "info",
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, rt.String())
	},
}

var (
	configFileFlag = &cli.StringFlag{
		Name:    "config",
		Usage:   "TOML configuration file",
		EnvVars: []string{"MEMOCACHE_BENCH_CONFIG"},
	}
	capacityFlag = &cli.IntFlag{
		Name:    "cap",
		Usage:   "default entries per store",
		Value:   defaultConfig.Capacity,
		EnvVars: []string{"MEMOCACHE_CAPACITY"},
	}
	registriesFlag = &cli.IntFlag{
		Name:  "registries",
		Usage: "number of registry keys (independent stores)",
		Value: defaultConfig.Registries,
	}
	awaiterFlag = &cli.StringFlag{
		Name:  "awaiter",
		Usage: "factory scheduling: sync | async",
		Value: defaultConfig.Awaiter,
	}
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "number of worker goroutines",
		Value: defaultConfig.Workers,
	}
	durationFlag = &cli.StringFlag{
		Name:  "duration",
		Usage: "benchmark duration",
		Value: defaultConfig.Duration,
	}
	keysFlag = &cli.IntFlag{
		Name:  "keys",
		Usage: "cache keyspace size",
		Value: defaultConfig.Keys,
	}
	zipfSFlag = &cli.Float64Flag{
		Name:  "zipf-s",
		Usage: "Zipf s > 1 (skew)",
		Value: defaultConfig.ZipfS,
	}
	zipfVFlag = &cli.Float64Flag{
		Name:  "zipf-v",
		Usage: "Zipf v",
		Value: defaultConfig.ZipfV,
	}
	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "random seed (0 = time based)",
	}
	latencyFlag = &cli.StringFlag{
		Name:  "latency",
		Usage: "simulated factory latency",
		Value: defaultConfig.Latency,
	}
	failFlag = &cli.IntFlag{
		Name:  "fail",
		Usage: "percentage of factory calls that fail [0..100]",
		Value: defaultConfig.FailPct,
	}
	metricsAddrFlag = &cli.StringFlag{
		Name:    "http",
		Usage:   "serve Prometheus metrics at addr (empty = disabled)",
		Value:   defaultConfig.MetricsAddr,
		EnvVars: []string{"MEMOCACHE_METRICS_ADDR"},
	}
	pprofFlag = &cli.StringFlag{
		Name:  "pprof",
		Usage: "serve pprof at addr (e.g. :6060); empty = disabled",
	}
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "debug | info | warn | error",
		Value:   defaultConfig.LogLevel,
		EnvVars: []string{"MEMOCACHE_LOG_LEVEL"},
	}

	flags = []cli.Flag{
		configFileFlag,
		capacityFlag,
		registriesFlag,
		awaiterFlag,
		workersFlag,
		durationFlag,
		keysFlag,
		zipfSFlag,
		zipfVFlag,
		seedFlag,
		latencyFlag,
		failFlag,
		metricsAddrFlag,
		pprofFlag,
		logLevelFlag,
	}
)

// loadConfig starts from defaults, applies the TOML file if given, then the
// flags the user set explicitly.
func loadConfig(ctx *cli.Context) (benchConfig, error) {
	cfg := defaultConfig
	if file := ctx.String(configFileFlag.Name); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet(capacityFlag.Name) {
		cfg.Capacity = ctx.Int(capacityFlag.Name)
	}
	if ctx.IsSet(registriesFlag.Name) {
		cfg.Registries = ctx.Int(registriesFlag.Name)
	}
	if ctx.IsSet(awaiterFlag.Name) {
		cfg.Awaiter = ctx.String(awaiterFlag.Name)
	}
	if ctx.IsSet(workersFlag.Name) {
		cfg.Workers = ctx.Int(workersFlag.Name)
	}
	if ctx.IsSet(durationFlag.Name) {
		cfg.Duration = ctx.String(durationFlag.Name)
	}
	if ctx.IsSet(keysFlag.Name) {
		cfg.Keys = ctx.Int(keysFlag.Name)
	}
	if ctx.IsSet(zipfSFlag.Name) {
		cfg.ZipfS = ctx.Float64(zipfSFlag.Name)
	}
	if ctx.IsSet(zipfVFlag.Name) {
		cfg.ZipfV = ctx.Float64(zipfVFlag.Name)
	}
	if ctx.IsSet(seedFlag.Name) {
		cfg.Seed = ctx.Int64(seedFlag.Name)
	}
	if ctx.IsSet(latencyFlag.Name) {
		cfg.Latency = ctx.String(latencyFlag.Name)
	}
	if ctx.IsSet(failFlag.Name) {
		cfg.FailPct = ctx.Int(failFlag.Name)
	}
	if ctx.IsSet(metricsAddrFlag.Name) {
		cfg.MetricsAddr = ctx.String(metricsAddrFlag.Name)
	}
	if ctx.IsSet(pprofFlag.Name) {
		cfg.PprofAddr = ctx.String(pprofFlag.Name)
	}
	if ctx.IsSet(logLevelFlag.Name) {
		cfg.LogLevel = ctx.String(logLevelFlag.Name)
	}

	if cfg.Capacity <= 0 {
		return cfg, fmt.Errorf("capacity must be > 0, got %d", cfg.Capacity)
	}
	if cfg.ZipfS <= 1 {
		return cfg, fmt.Errorf("zipf-s must be > 1, got %v", cfg.ZipfS)
	}
	if cfg.ZipfV < 1 {
		return cfg, fmt.Errorf("zipf-v must be >= 1, got %v", cfg.ZipfV)
	}
	return cfg, nil
}

func loadConfigFile(file string, cfg *benchConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}
