package executemany

import (
	"context"
	"fmt"
	"strings"

	"execmany/internal/execute"
	"execmany/internal/jobs"
	"execmany/internal/logging"
	"execmany/internal/mediapackage"
	"execmany/internal/services"
)

// item tracks one selected element through the run.
type item struct {
	input      *mediapackage.Element
	job        *jobs.Job
	inspection *jobs.Job
	result     *mediapackage.Element
}

// passthrough reports whether the execute job produced no new element.
func (it *item) passthrough() bool {
	return it.result == it.input
}

func newItems(selected []*mediapackage.Element) []*item {
	items := make([]*item, len(selected))
	for i, element := range selected {
		items[i] = &item{input: element}
	}
	return items
}

// dispatch submits one execute job per item, in order. When a submission
// fails, the jobs already submitted are drained before the error returns.
func (r *run) dispatch(ctx context.Context) error {
	for i, it := range r.items {
		job, err := r.deps.Executor.Execute(ctx, execute.Request{
			Command:        r.opts.command,
			Params:         r.opts.params,
			Element:        it.input,
			OutputFilename: r.opts.outputFilename,
			ExpectedType:   r.opts.expectedType,
			Load:           r.opts.load,
		})
		if err != nil {
			r.drain(ctx, i)
			return services.Wrap(services.ErrExecution, "execute-many", "dispatch",
				fmt.Sprintf("submit job for element %s", it.input.ID), err)
		}
		it.job = job
		r.logger.Debug("execute job submitted",
			logging.Int("index", i),
			logging.Int64(logging.FieldJobID, job.ID),
			logging.String(logging.FieldElementID, it.input.ID),
		)
	}
	return nil
}

// drain waits for the first n submitted jobs and removes the files they
// staged, so an aborted dispatch leaves no running work behind.
func (r *run) drain(ctx context.Context, n int) {
	if n == 0 {
		return
	}
	submitted := make([]*jobs.Job, n)
	ids := make([]int64, n)
	for i := range n {
		submitted[i] = r.items[i].job
		ids[i] = submitted[i].ID
	}
	logging.WarnWithContext(r.logger, "dispatch aborted, draining submitted jobs", "dispatch_aborted",
		logging.Any("job_ids", ids),
		logging.String(logging.FieldImpact, "jobs already submitted run to completion and their output is discarded"),
	)
	outcome, err := r.barrier.Wait(ctx, submitted)
	if err != nil {
		logging.WarnWithContext(r.logger, "draining submitted jobs failed", "dispatch_drain_failed",
			logging.Any("job_ids", ids),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove leftovers with 'execmany staging clean'"),
		)
		return
	}
	for _, job := range outcome.Jobs {
		if job.Status != jobs.StatusSucceeded || strings.TrimSpace(job.Payload) == "" {
			continue
		}
		element, err := mediapackage.ParseElement(job.Payload)
		if err != nil || strings.TrimSpace(element.URI) == "" {
			continue
		}
		if err := r.deps.Storage.DeleteStaged(ctx, element.URI); err != nil {
			logging.WarnWithContext(r.logger, "staged output not removed", "dispatch_drain_failed",
				logging.Int64(logging.FieldJobID, job.ID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove leftovers with 'execmany staging clean'"),
			)
		}
	}
}

// collect turns finished execute jobs into results and submits inspection
// jobs for track results.
func (r *run) collect(ctx context.Context) error {
	for _, it := range r.items {
		if strings.TrimSpace(it.job.Payload) == "" {
			it.result = it.input
			continue
		}
		element, err := mediapackage.ParseElement(it.job.Payload)
		if err != nil {
			return services.Wrap(services.ErrSerialization, "execute-many", "collect",
				fmt.Sprintf("job %d payload is not an element", it.job.ID), err)
		}
		it.result = element
		if !element.IsTrack() {
			continue
		}
		job, err := r.deps.Inspector.Inspect(ctx, element.URI)
		if err != nil {
			return services.Wrap(services.ErrInspection, "execute-many", "collect",
				fmt.Sprintf("submit inspection for job %d", it.job.ID), err)
		}
		it.inspection = job
		r.logger.Debug("inspection job submitted",
			logging.Int64(logging.FieldJobID, job.ID),
			logging.String("uri", element.URI),
		)
	}
	return nil
}

// applyInspections replaces track results with their inspected form.
func (r *run) applyInspections() error {
	for _, it := range r.items {
		if it.inspection == nil {
			continue
		}
		element, err := mediapackage.ParseElement(it.inspection.Payload)
		if err != nil {
			return services.Wrap(services.ErrSerialization, "execute-many", "inspect",
				fmt.Sprintf("inspection job %d payload is not an element", it.inspection.ID), err)
		}
		it.result = element
	}
	return nil
}
