package logging

import (
	"context"
	"log/slog"

	"execmany/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (operation_start, job_failed, ...).
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldWorkflowID identifies the workflow instance.
	FieldWorkflowID = "workflow_id"
	// FieldOperation is the workflow operation (step) name.
	FieldOperation = "operation"
	// FieldMediaPackageID identifies the mediapackage being processed.
	FieldMediaPackageID = "mediapackage_id"
	// FieldJobID identifies a job in the job store.
	FieldJobID = "job_id"
	// FieldJobType is the job type (execute, inspect).
	FieldJobType = "job_type"
	// FieldElementID identifies a mediapackage element.
	FieldElementID = "element_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.WorkflowIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldWorkflowID, id))
	}
	if op, ok := services.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	if mp, ok := services.MediaPackageIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldMediaPackageID, mp))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
