package workflow

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"execmany/internal/mediapackage"
	"execmany/internal/services"
)

type stubHandler struct {
	result   *Result
	err      error
	started  int
	skipped  int
	logger   *slog.Logger
	seenOpID string
}

func (h *stubHandler) Start(ctx context.Context, inst *Instance) (*Result, error) {
	h.started++
	h.seenOpID, _ = services.OperationFromContext(ctx)
	return h.result, h.err
}

func (h *stubHandler) Skip(context.Context, *Instance) (*Result, error) {
	h.skipped++
	return &Result{Action: ActionSkip}, nil
}

func (h *stubHandler) SetLogger(logger *slog.Logger) { h.logger = logger }

func newInstance() *Instance {
	mp := mediapackage.New("demo")
	mp.ID = "mp-1"
	return &Instance{
		ID:      "wf-1",
		Package: mp,
		Operation: &Operation{
			ID:            "op-1",
			Template:      "execute-many",
			Configuration: map[string]string{"exec": " ffmpeg ", "tags": "a, ,b"},
		},
	}
}

func TestRunStartDefaultsToContinue(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	handler := &stubHandler{result: &Result{TimeInQueue: time.Second}}

	result, err := Run(context.Background(), RunOptions{Logger: logger, Handler: handler, Instance: newInstance()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Action != ActionContinue {
		t.Fatalf("expected CONTINUE, got %q", result.Action)
	}
	if handler.started != 1 || handler.skipped != 0 {
		t.Fatalf("unexpected calls start=%d skip=%d", handler.started, handler.skipped)
	}
	if handler.logger == nil {
		t.Fatal("expected handler to receive operation logger")
	}
	if handler.seenOpID != "execute-many" {
		t.Fatalf("expected operation in context, got %q", handler.seenOpID)
	}
	out := buf.String()
	for _, want := range []string{"operation_start", "operation_complete", "mediapackage_id=mp-1", "workflow_id=wf-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestRunSkip(t *testing.T) {
	handler := &stubHandler{}
	result, err := Run(context.Background(), RunOptions{Handler: handler, Instance: newInstance(), Skip: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Action != ActionSkip || handler.skipped != 1 || handler.started != 0 {
		t.Fatalf("unexpected skip result %+v (start=%d skip=%d)", result, handler.started, handler.skipped)
	}
}

func TestRunWrapsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cause := services.Wrap(services.ErrConfiguration, "execute-many", "options", "exec is required", nil)
	handler := &stubHandler{err: cause}

	_, err := Run(context.Background(), RunOptions{Logger: logger, Handler: handler, Instance: newInstance()})
	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("expected OperationError, got %T", err)
	}
	if opErr.Kind != "configuration" || opErr.Operation != "execute-many" {
		t.Fatalf("unexpected operation error %+v", opErr)
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatal("expected configuration marker to survive")
	}
	if !strings.Contains(buf.String(), "operation_failure") {
		t.Fatalf("expected failure log, got:\n%s", buf.String())
	}
}

func TestRunNilResultIsFailure(t *testing.T) {
	_, err := Run(context.Background(), RunOptions{Handler: &stubHandler{}, Instance: newInstance()})
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Kind != "execution" {
		t.Fatalf("expected execution OperationError, got %v", err)
	}
}

func TestOperationErrorCarriesCause(t *testing.T) {
	denied := services.Wrap(services.ErrConfiguration, "execute", "submit", `command "rm" is not in execute.allowed_commands`, nil)
	cause := services.Wrap(services.ErrExecution, "execute-many", "dispatch", "submit job for element track-1", denied)

	_, err := Run(context.Background(), RunOptions{Handler: &stubHandler{err: cause}, Instance: newInstance()})
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "submit job for element track-1") || !strings.Contains(err.Error(), "execute.allowed_commands") {
		t.Fatalf("expected message to include the cause chain, got %q", err.Error())
	}
}

func TestRunRequiresInstance(t *testing.T) {
	if _, err := Run(context.Background(), RunOptions{Handler: &stubHandler{}}); err == nil {
		t.Fatal("expected error without instance")
	}
}

func TestOperationConfigHelpers(t *testing.T) {
	op := newInstance().Operation
	if got := op.Config("exec"); got != "ffmpeg" {
		t.Fatalf("Config trimmed = %q", got)
	}
	if got := op.Config("missing"); got != "" {
		t.Fatalf("missing key = %q", got)
	}
	list := op.ConfigList("tags")
	if len(list) != 2 || list[0] != "a" || list[1] != "b" {
		t.Fatalf("ConfigList = %v", list)
	}
	var nilOp *Operation
	if nilOp.Config("exec") != "" {
		t.Fatal("nil operation should return empty config")
	}
}

func TestParseOperation(t *testing.T) {
	op, err := ParseOperation([]byte(`
id = "op-7"
template = "execute-many"

[configuration]
exec = "ffmpeg"
"source-flavor" = "presenter/source"
`))
	if err != nil {
		t.Fatalf("ParseOperation: %v", err)
	}
	if op.Name() != "execute-many" || op.Config("source-flavor") != "presenter/source" {
		t.Fatalf("unexpected operation %+v", op)
	}

	if _, err := ParseOperation([]byte(`bogus = 1`)); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for unknown key, got %v", err)
	}
	if _, err := ParseOperation([]byte(`description = "x"`)); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error without name, got %v", err)
	}
}
