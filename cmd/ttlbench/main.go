package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	promadapter "github.com/codewandler/ttlmap-go/adapters/prometheus"
	"github.com/codewandler/ttlmap-go/core/clock"
	"github.com/codewandler/ttlmap-go/core/sweep"
	"github.com/codewandler/ttlmap-go/core/ttlmap"
)

// === Config ===

var (
	N          = getEnvInt("N", 200_000)
	backend    = getEnv("BACKEND", "all")
	ttl        = time.Duration(getEnvInt("TTL_MS", 1_000)) * time.Millisecond
	expiredPct = getEnvInt("EXPIRED_PCT", 50)
	logLevel   = getEnvLevel("LOG_LEVEL", slog.LevelInfo)
)

func getEnv(key, fallback string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, fmt.Sprintf("%d", fallback)))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(getEnv(key, fallback.String()))); err != nil {
		return fallback
	}
	return l
}

func parseKinds(s string) ([]ttlmap.Kind, error) {
	if s == "" || strings.EqualFold(s, "all") {
		return ttlmap.Kinds, nil
	}
	var kinds []ttlmap.Kind
	for _, part := range strings.Split(s, ",") {
		k, err := ttlmap.ParseKind(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

type config struct {
	n          int
	ttl        time.Duration
	expiredPct int
}

type result struct {
	kind     ttlmap.Kind
	inserted int
	live     int
	purged   int
	insert   time.Duration
	scan     time.Duration
	sweep    time.Duration
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	kinds, err := parseKinds(backend)
	checkErr(err)

	cfg := config{n: N, ttl: ttl, expiredPct: expiredPct}
	reg := prometheus.NewRegistry()
	sweepMetrics := promadapter.NewSweepMetrics(reg)

	log.Info("starting",
		slog.Int("n", cfg.n),
		slog.Duration("ttl", cfg.ttl),
		slog.Int("expired_pct", cfg.expiredPct),
		slog.String("backends", backend),
	)

	for _, kind := range kinds {
		res := run(log, kind, cfg, sweepMetrics)
		mu := getMemUsage()
		log.Info("done",
			slog.String("kind", res.kind.String()),
			slog.Int("inserted", res.inserted),
			slog.Int("live", res.live),
			slog.Int("purged", res.purged),
			slog.Duration("insert", res.insert),
			slog.Duration("scan", res.scan),
			slog.Duration("sweep", res.sweep),
			slog.Int("inserts_per_sec", int(float64(res.inserted)/res.insert.Seconds())),
			slog.Uint64("heap_mib", mu.Alloc/1024/1024),
		)
		runtime.GC()
	}

	mfs, err := reg.Gather()
	checkErr(err)
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				log.Debug("metric", slog.String("name", mf.GetName()), slog.Float64("value", c.GetValue()))
			}
		}
	}
}

// run fills one map of the given kind, moves a manual clock past the TTL of
// the first expiredPct percent of keys, then scans and sweeps.
func run(log *slog.Logger, kind ttlmap.Kind, cfg config, metrics sweep.Metrics) result {
	start := clock.FromTime(time.Now())
	clk := clock.NewManual(start)

	m, err := ttlmap.New[int, int](ttlmap.WithKind(kind), ttlmap.WithClock(clk), ttlmap.WithCapacity(cfg.n))
	checkErr(err)

	expiring := cfg.n * cfg.expiredPct / 100
	res := result{kind: kind}

	t0 := time.Now()
	for i := range cfg.n {
		if i < expiring {
			m.Insert(i, i, cfg.ttl)
		} else {
			m.Insert(i, i, 2*cfg.ttl+time.Second)
		}
		res.inserted++
	}
	res.insert = time.Since(t0)

	clk.Advance(cfg.ttl)
	log.Debug("clock advanced", slog.String("kind", kind.String()), slog.String("now", clk.Now().String()))

	t0 = time.Now()
	for range m.All(clk.Now()) {
		res.live++
	}
	res.scan = time.Since(t0)

	s := sweep.New(m, sweep.Options{Name: kind.String(), Clock: clk, Log: log, Metrics: metrics})
	t0 = time.Now()
	res.purged = s.Sweep()
	res.sweep = time.Since(t0)

	return res
}

// === stats helpers ===

type MemUsage struct {
	Alloc uint64 // bytes allocated and not yet freed (heap)
	Sys   uint64 // total bytes obtained from OS
}

func getMemUsage() MemUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemUsage{
		Alloc: m.Alloc,
		Sys:   m.Sys,
	}
}

func checkErr(err error) {
	if err != nil {
		panic(err)
	}
}
