package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"

	"execmany/internal/logging"
)

// loadScale converts fractional job loads into semaphore weights.
const loadScale = 100

// Work performs a job and returns its payload.
type Work func(ctx context.Context, job *Job) (string, error)

// Submitter schedules job work. Runner is the production implementation.
type Submitter interface {
	Submit(ctx context.Context, spec Spec, work Work) (*Job, error)
}

// Runner executes submitted jobs in the background while keeping the
// combined load of running jobs within capacity.
type Runner struct {
	store    *Store
	sem      *semaphore.Weighted
	capacity int64
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewRunner builds a runner allowing maxConcurrent jobs of load 1.0 at once.
func NewRunner(store *Store, maxConcurrent int, logger *slog.Logger) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	capacity := int64(maxConcurrent) * loadScale
	return &Runner{
		store:    store,
		sem:      semaphore.NewWeighted(capacity),
		capacity: capacity,
		logger:   logging.NewComponentLogger(logger, "jobs"),
	}
}

// Submit persists a queued job and schedules work for it. The returned job
// reflects the queued state; poll the store for progress.
func (r *Runner) Submit(ctx context.Context, spec Spec, work Work) (*Job, error) {
	if work == nil {
		return nil, errors.New("job work is nil")
	}
	job, err := r.store.Create(ctx, spec)
	if err != nil {
		return nil, err
	}

	logger := logging.WithContext(ctx, r.logger).With(
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldJobType, string(job.Type)),
	)
	logger.Debug("job queued", logging.Float64("load", job.Load))

	runCtx := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(runCtx, job, work, logger)
	}()
	return job, nil
}

func (r *Runner) run(ctx context.Context, job *Job, work Work, logger *slog.Logger) {
	weight := r.weight(job.Load)
	if err := r.sem.Acquire(ctx, weight); err != nil {
		r.fail(ctx, job.ID, fmt.Errorf("wait for capacity: %w", err), logger)
		return
	}
	defer r.sem.Release(weight)

	running, err := r.store.MarkRunning(ctx, job.ID)
	if err != nil {
		r.fail(ctx, job.ID, err, logger)
		return
	}
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_started"),
		logging.Duration("queue_time", running.QueueTime),
	)

	payload, err := safeWork(ctx, running, work)
	if err != nil {
		r.fail(ctx, job.ID, err, logger)
		return
	}
	if err := r.store.MarkSucceeded(ctx, job.ID, payload); err != nil {
		logging.ErrorWithContext(logger, "record job success failed", "job_state_error",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect the job database for locks"),
		)
		return
	}
	logger.Info("job succeeded",
		logging.String(logging.FieldEventType, "job_succeeded"),
		logging.Bool("has_payload", payload != ""),
	)
}

func (r *Runner) fail(ctx context.Context, id int64, cause error, logger *slog.Logger) {
	logger.Warn("job failed",
		logging.String(logging.FieldEventType, "job_failed"),
		logging.Error(cause),
	)
	if err := r.store.MarkFailed(ctx, id, cause.Error()); err != nil {
		logging.ErrorWithContext(logger, "record job failure failed", "job_state_error", logging.Error(err))
	}
}

func safeWork(ctx context.Context, job *Job, work Work) (payload string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
	}()
	return work(ctx, job)
}

func (r *Runner) weight(load float64) int64 {
	if load <= 0 || math.IsNaN(load) {
		load = 1.0
	}
	w := int64(math.Ceil(load * loadScale))
	return min(max(w, 1), r.capacity)
}

// Close waits for every submitted job to finish.
func (r *Runner) Close() {
	r.wg.Wait()
}
