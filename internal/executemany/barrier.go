package executemany

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"execmany/internal/jobs"
	"execmany/internal/logging"
	"execmany/internal/services"
)

const defaultPollInterval = 500 * time.Millisecond

var errJobsPending = errors.New("jobs still pending")

// Barrier blocks until a set of jobs has finished.
type Barrier struct {
	source   JobSource
	interval time.Duration
	logger   *slog.Logger
}

// NewBarrier returns a barrier polling source every interval.
func NewBarrier(source JobSource, interval time.Duration, logger *slog.Logger) *Barrier {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Barrier{source: source, interval: interval, logger: logger}
}

// BarrierResult is the outcome of a wait.
type BarrierResult struct {
	// Jobs holds the final state of every job, aligned with the input.
	Jobs []*jobs.Job
	// QueueTime is the combined queue time of all jobs, failed ones included.
	QueueTime time.Duration
	// Failed is the first failed job in input order, if any.
	Failed *jobs.Job
}

// Success reports whether every job succeeded.
func (r BarrierResult) Success() bool {
	return r.Failed == nil
}

// Wait polls until every job in pending is terminal. It only returns an error
// when the jobs cannot be read or ctx ends; job failures are reported in the
// result.
func (b *Barrier) Wait(ctx context.Context, pending []*jobs.Job) (BarrierResult, error) {
	current := make([]*jobs.Job, len(pending))
	copy(current, pending)

	err := retry.Do(ctx, retry.NewConstant(b.interval), func(ctx context.Context) error {
		open := 0
		for i, job := range current {
			if job.Status.Terminal() {
				continue
			}
			latest, err := b.source.GetByID(ctx, job.ID)
			if err != nil {
				return services.Wrap(services.ErrStorage, "execute-many", "barrier",
					fmt.Sprintf("read job %d", job.ID), err)
			}
			if latest == nil {
				return services.Wrap(services.ErrNotFound, "execute-many", "barrier",
					fmt.Sprintf("job %d disappeared", job.ID), nil)
			}
			current[i] = latest
			if !latest.Status.Terminal() {
				open++
			}
		}
		if open > 0 {
			b.logger.Debug("waiting for jobs", logging.Int("pending", open), logging.Int("total", len(current)))
			return retry.RetryableError(errJobsPending)
		}
		return nil
	})
	if err != nil {
		return BarrierResult{}, err
	}

	result := BarrierResult{Jobs: current}
	for _, job := range current {
		result.QueueTime += job.QueueTime
		if job.Status != jobs.StatusSucceeded && result.Failed == nil {
			result.Failed = job
		}
	}
	return result, nil
}
