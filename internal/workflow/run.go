package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"execmany/internal/logging"
	"execmany/internal/services"
)

// LoggerAware is implemented by handlers that want the operation-scoped logger.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}

// RunOptions controls a single operation execution.
type RunOptions struct {
	Logger    *slog.Logger
	Handler   Handler
	Instance  *Instance
	Skip      bool
	RequestID string
}

// OperationError reports a failed operation with its error classification.
type OperationError struct {
	Operation string
	Kind      string
	Err       error
}

func (e *OperationError) Error() string {
	message := services.Details(e.Err).Message
	if strings.TrimSpace(message) == "" && e.Err != nil {
		message = e.Err.Error()
	}
	return fmt.Sprintf("operation %s failed (%s): %s", e.Operation, e.Kind, message)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Run executes the handler for one workflow instance and returns its result.
// Handler errors are returned as *OperationError.
func Run(ctx context.Context, opts RunOptions) (*Result, error) {
	if opts.Handler == nil {
		return nil, errors.New("operation handler is required")
	}
	if opts.Instance == nil || opts.Instance.Package == nil {
		return nil, errors.New("workflow instance with a mediapackage is required")
	}
	if opts.Instance.Operation == nil {
		opts.Instance.Operation = &Operation{}
	}
	name := opts.Instance.Operation.Name()

	opCtx := services.WithWorkflowID(ctx, opts.Instance.ID)
	opCtx = services.WithOperation(opCtx, name)
	opCtx = services.WithMediaPackageID(opCtx, opts.Instance.Package.ID)
	opCtx = services.WithRequestID(opCtx, opts.RequestID)
	opLogger := logging.WithContext(opCtx, opts.Logger)
	if aware, ok := opts.Handler.(LoggerAware); ok {
		aware.SetLogger(opLogger)
	}

	opLogger.Info(
		"operation started",
		logging.String(logging.FieldEventType, "operation_start"),
		logging.Bool("skip", opts.Skip),
		logging.Int("element_count", len(opts.Instance.Package.Elements)),
	)

	started := time.Now()
	var (
		result *Result
		err    error
	)
	if opts.Skip {
		result, err = opts.Handler.Skip(opCtx, opts.Instance)
	} else {
		result, err = opts.Handler.Start(opCtx, opts.Instance)
	}
	if err == nil && result == nil {
		err = services.Wrap(services.ErrExecution, "workflow", name, "Handler returned no result", nil)
	}
	if err != nil {
		return nil, handleFailure(opLogger, name, err)
	}
	if result.Action == "" {
		result.Action = ActionContinue
	}

	opLogger.Info(
		"operation completed",
		logging.String(logging.FieldEventType, "operation_complete"),
		logging.String("action", string(result.Action)),
		logging.Int("property_count", len(result.Properties)),
		logging.Duration("time_in_queue", result.TimeInQueue),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func handleFailure(logger *slog.Logger, name string, opErr error) error {
	details := services.Details(opErr)
	message := strings.TrimSpace(details.Message)
	if message == "" {
		message = strings.TrimSpace(opErr.Error())
	}
	logger.Error(
		"operation failed",
		logging.String(logging.FieldEventType, "operation_failure"),
		logging.String("error_kind", details.Kind),
		logging.String("error_message", message),
		logging.Error(opErr),
	)
	return &OperationError{Operation: name, Kind: details.Kind, Err: opErr}
}
