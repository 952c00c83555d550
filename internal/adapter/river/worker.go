package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// NotificationWorker delivers notification jobs. Operators read them from
// the structured log.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationJobArgs]

	Logger *slog.Logger
}

// Work processes a single notification job.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationJobArgs]) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, job.Args.Message,
		"notification", job.Args.NotificationKind,
		"count", job.Args.Count,
		"total", job.Args.Total,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// SweepJobArgs triggers one reconciliation sweep.
type SweepJobArgs struct{}

// Kind returns the unique job type identifier used by River's job routing.
func (SweepJobArgs) Kind() string { return "reconciliation.sweep" }

// InsertOpts disables retries: the next scheduled sweep supersedes a failed one.
func (SweepJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{MaxAttempts: 1}
}

// SweepWorker runs sweeps from the job queue. Sweep is assigned after the
// client is built, because the sweeping service itself needs the client to
// send notifications.
type SweepWorker struct {
	river.WorkerDefaults[SweepJobArgs]

	Sweep func(ctx context.Context) error
}

// Work runs one sweep.
func (w *SweepWorker) Work(ctx context.Context, _ *river.Job[SweepJobArgs]) error {
	if w.Sweep == nil {
		return nil
	}
	return w.Sweep(ctx)
}
