package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/ttlmap-go/core/clock"
)

const DefaultInterval = time.Minute

var (
	ErrAlreadyRunning = errors.New("sweeper already running")
)

// Target is what a Sweeper purges. ttlmap.Synced implements it.
type Target interface {
	RemoveExpired(now clock.Instant) int
	Len() int
}

type (
	Options struct {
		// Name identifies the sweeper in logs and metrics.
		Name string
		// Interval between passes (default DefaultInterval).
		Interval time.Duration
		// Clock supplies "now" for each pass. Defaults to the target's own
		// clock when it has one, the system clock otherwise.
		Clock   clock.Clock
		Log     *slog.Logger
		Metrics Metrics
	}

	Sweeper struct {
		name     string
		interval time.Duration
		clock    clock.Clock
		log      *slog.Logger
		metrics  Metrics
		target   Target

		mu     sync.Mutex
		cancel context.CancelFunc
		done   chan struct{}
	}
)

func New(target Target, opts Options) *Sweeper {
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("sweeper-%s", gonanoid.Must(6))
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	clk := opts.Clock
	if clk == nil {
		if c, ok := target.(interface{ Clock() clock.Clock }); ok {
			clk = c.Clock()
		} else {
			clk = clock.System()
		}
	}

	log := opts.Log
	if log == nil {
		log = slog.Default()
	}

	m := opts.Metrics
	if m == nil {
		m = NopMetrics()
	}

	return &Sweeper{
		name:     name,
		interval: interval,
		clock:    clk,
		log:      log.With(slog.String("sweeper", name)),
		metrics:  m,
		target:   target,
	}
}

func (s *Sweeper) Name() string { return s.name }

// Sweep runs one pass and returns the number of purged entries.
func (s *Sweeper) Sweep() int {
	timer := s.metrics.SweepDuration(s.name)
	purged := s.target.RemoveExpired(s.clock.Now())
	timer.ObserveDuration()

	remaining := s.target.Len()
	s.metrics.SweepCompleted(s.name, purged, remaining)
	s.log.Debug("sweep", slog.Int("purged", purged), slog.Int("remaining", remaining))
	return purged
}

// Run sweeps every interval until ctx is done and returns ctx's error.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Start runs the sweeper in its own goroutine until Stop is called or ctx
// is done.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	s.log.Debug("sweeper started", slog.Duration("interval", s.interval))
	go func() {
		defer close(done)
		_ = s.Run(runCtx)
	}()
	return nil
}

// Stop stops a started sweeper and waits for its goroutine to exit. It is
// a no-op if the sweeper is not running.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Debug("sweeper stopped")
}
