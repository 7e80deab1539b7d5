package executemany

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"execmany/internal/jobs"
	"execmany/internal/logging"
	"execmany/internal/mediapackage"
	"execmany/internal/services"
	"execmany/internal/workflow"
)

// Template is the operation template name served by Handler.
const Template = "execute-many"

// Handler runs the execute-many operation.
type Handler struct {
	deps    Deps
	logger  *slog.Logger
	barrier *Barrier
}

// NewHandler wires the operation with its collaborators.
func NewHandler(deps Deps) *Handler {
	h := &Handler{deps: deps}
	h.SetLogger(deps.Logger)
	return h
}

// SetLogger replaces the handler logger.
func (h *Handler) SetLogger(logger *slog.Logger) {
	h.logger = logging.NewComponentLogger(logger, Template)
	h.barrier = NewBarrier(h.deps.Jobs, h.deps.PollInterval, h.logger)
}

// HealthCheck reports whether every collaborator is wired.
func (h *Handler) HealthCheck(context.Context) workflow.Health {
	switch {
	case h.deps.Executor == nil:
		return workflow.Unhealthy(Template, "execution service unavailable")
	case h.deps.Inspector == nil:
		return workflow.Unhealthy(Template, "inspection service unavailable")
	case h.deps.Storage == nil:
		return workflow.Unhealthy(Template, "workspace unavailable")
	case h.deps.Jobs == nil:
		return workflow.Unhealthy(Template, "job store unavailable")
	}
	return workflow.Healthy(Template)
}

// Skip leaves the package untouched.
func (h *Handler) Skip(_ context.Context, inst *workflow.Instance) (*workflow.Result, error) {
	return &workflow.Result{Package: inst.Package, Action: workflow.ActionSkip}, nil
}

// Start executes the configured command on every selected element.
func (h *Handler) Start(ctx context.Context, inst *workflow.Instance) (*workflow.Result, error) {
	if inst == nil || inst.Package == nil {
		return nil, services.Wrap(services.ErrNotFound, Template, "start", "mediapackage is missing", nil)
	}
	if health := h.HealthCheck(ctx); !health.Ready {
		return nil, services.Wrap(services.ErrConfiguration, Template, "start", health.Detail, nil)
	}
	op := inst.Operation
	if op == nil {
		op = &workflow.Operation{}
	}
	logger := h.logger.With(
		logging.String("operation_id", op.ID),
		logging.String("description", strings.TrimSpace(op.Description)),
	)
	logger.Debug("running execute-many operation")

	opts, err := parseOptions(op, logger)
	if err != nil {
		return nil, err
	}

	pkg := inst.Package.Clone()
	selected := Select(pkg, opts.sourceTags, opts.predicate)
	if len(selected) == 0 {
		logging.WarnWithContext(logger, "no suitable elements to execute the command", "no_suitable_elements",
			logging.String("command", opts.command),
			logging.Any("tags", opts.sourceTags),
			logging.String("flavor", opts.predicate.Flavor.String()),
			logging.String("source_audio", formatTriState(opts.predicate.Audio)),
			logging.String("source_video", formatTriState(opts.predicate.Video)),
			logging.String("source_subtitle", formatTriState(opts.predicate.Subtitle)),
			logging.String(logging.FieldErrorHint, "check source-flavor, source-tags and source track filters"),
			logging.String(logging.FieldImpact, "mediapackage left unchanged"),
		)
		return &workflow.Result{
			Package:    inst.Package,
			Properties: map[string]string{},
			Action:     workflow.ActionContinue,
		}, nil
	}

	r := &run{
		deps:       h.deps,
		opts:       opts,
		pkg:        pkg,
		items:      newItems(selected),
		barrier:    h.barrier,
		properties: NewPropertyMerger(h.deps.Storage),
		logger:     logger,
	}
	if err := r.execute(ctx); err != nil {
		return nil, err
	}

	logger.Debug("execute-many operation completed",
		logging.Int("elements", len(r.items)),
		logging.Duration("time_in_queue", r.queueTime),
	)
	return &workflow.Result{
		Package:     pkg,
		Properties:  r.properties.Values(),
		Action:      workflow.ActionContinue,
		TimeInQueue: r.queueTime,
	}, nil
}

// run is the state of one Start invocation. pkg is a private copy of the
// instance package.
type run struct {
	deps       Deps
	opts       options
	pkg        *mediapackage.MediaPackage
	items      []*item
	barrier    *Barrier
	properties *PropertyMerger
	logger     *slog.Logger
	queueTime  time.Duration
}

func (r *run) execute(ctx context.Context) error {
	if err := r.dispatch(ctx); err != nil {
		return err
	}
	executed := make([]*jobs.Job, len(r.items))
	for i, it := range r.items {
		executed[i] = it.job
	}
	if err := r.await(ctx, executed, services.ErrExecution, "Execute operation failed", func(i int, job *jobs.Job) {
		r.items[i].job = job
	}); err != nil {
		return err
	}

	if err := r.collect(ctx); err != nil {
		return err
	}
	var (
		inspections []*jobs.Job
		positions   []int
	)
	for i, it := range r.items {
		if it.inspection != nil {
			inspections = append(inspections, it.inspection)
			positions = append(positions, i)
		}
	}
	if len(inspections) > 0 {
		if err := r.await(ctx, inspections, services.ErrInspection, "Execute operation failed in track inspection", func(i int, job *jobs.Job) {
			r.items[positions[i]].inspection = job
		}); err != nil {
			return err
		}
		if err := r.applyInspections(); err != nil {
			return err
		}
	}

	return r.reconcile(ctx)
}

// await waits for pending, adds their queue time and hands each final job
// back through update.
func (r *run) await(ctx context.Context, pending []*jobs.Job, marker error, message string, update func(int, *jobs.Job)) error {
	outcome, err := r.barrier.Wait(ctx, pending)
	if err != nil {
		return services.Wrap(marker, Template, "wait", message, err)
	}
	r.queueTime += outcome.QueueTime
	for i, job := range outcome.Jobs {
		update(i, job)
	}
	if !outcome.Success() {
		failed := outcome.Failed
		logging.ErrorWithContext(r.logger, "job failed", "job_failed",
			logging.String(logging.FieldErrorHint, "inspect the job with 'execmany jobs list --status failed'"),
			logging.Int64(logging.FieldJobID, failed.ID),
			logging.String(logging.FieldJobType, string(failed.Type)),
			logging.String("error_message", failed.ErrorMessage),
		)
		return services.Wrap(marker, Template, "wait",
			fmt.Sprintf("%s: job %d: %s", message, failed.ID, failed.ErrorMessage), nil)
	}
	return nil
}

func formatTriState(v *bool) string {
	if v == nil {
		return "any"
	}
	if *v {
		return "true"
	}
	return "false"
}
