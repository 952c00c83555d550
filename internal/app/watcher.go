package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// SweepState is the watcher's run state.
type SweepState int32

const (
	SweepIdle SweepState = iota
	SweepRunning
)

func (s SweepState) String() string {
	if s == SweepRunning {
		return "running"
	}
	return "idle"
}

// Sweeper runs one full validation pass.
type Sweeper interface {
	ValidateAll(ctx context.Context) (domain.BatchReport, error)
}

// SweepOutcome is the result of one sweep.
type SweepOutcome struct {
	Report     domain.BatchReport
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Watcher triggers sweeps and never runs two at once. A trigger that arrives
// while a sweep is in flight is dropped.
type Watcher struct {
	sweeper  Sweeper
	notifier domain.Notifier
	logger   *slog.Logger

	state atomic.Int32
}

// NewWatcher creates an idle watcher. notifier may be nil.
func NewWatcher(sweeper Sweeper, notifier domain.Notifier, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{sweeper: sweeper, notifier: notifier, logger: logger}
}

// State reports whether a sweep is in flight.
func (w *Watcher) State() SweepState {
	return SweepState(w.state.Load())
}

// Sweep runs one sweep unless one is already running, in which case it
// returns false immediately.
func (w *Watcher) Sweep(ctx context.Context) (SweepOutcome, bool) {
	if !w.state.CompareAndSwap(int32(SweepIdle), int32(SweepRunning)) {
		w.logger.DebugContext(ctx, "sweep skipped, previous sweep still running")
		return SweepOutcome{}, false
	}
	defer w.state.Store(int32(SweepIdle))

	out := SweepOutcome{StartedAt: time.Now().UTC()}
	out.Report, out.Err = w.sweeper.ValidateAll(ctx)
	out.FinishedAt = time.Now().UTC()

	if out.Err != nil {
		w.logger.ErrorContext(ctx, "sweep failed", "error", out.Err)
		return out, true
	}

	w.logger.InfoContext(ctx, "sweep completed",
		"total", out.Report.Total(),
		"valid", len(out.Report.Valid),
		"invalid", len(out.Report.Invalid),
		"errored", len(out.Report.Errored),
		"duration", out.FinishedAt.Sub(out.StartedAt),
	)

	if n := len(out.Report.Invalid); n > 0 {
		notify(ctx, w.notifier, w.logger, domain.Notification{
			Kind:  domain.NotificationDriftDetected,
			Count: n,
			Total: out.Report.Total(),
		})
	}

	return out, true
}

// Run sweeps on every tick until ctx is cancelled or ticks is closed.
func (w *Watcher) Run(ctx context.Context, ticks <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			w.Sweep(ctx)
		}
	}
}

// Start runs the watcher on a ticker in its own goroutine. The returned
// function stops it and waits for an in-flight sweep to finish.
func (w *Watcher) Start(ctx context.Context, interval time.Duration) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	ticker := time.NewTicker(interval)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		w.Run(ctx, ticker.C)
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// notify delivers n without letting a delivery failure reach the caller.
func notify(ctx context.Context, notifier domain.Notifier, logger *slog.Logger, n domain.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		logger.WarnContext(ctx, "notification not delivered",
			"kind", string(n.Kind),
			"count", n.Count,
			"error", err,
		)
	}
}
