package executemany

import (
	"context"
	"log/slog"
	"time"

	"execmany/internal/execute"
	"execmany/internal/jobs"
)

// Executor submits command execution jobs.
type Executor interface {
	Execute(ctx context.Context, req execute.Request) (*jobs.Job, error)
}

// Inspector submits media inspection jobs.
type Inspector interface {
	Inspect(ctx context.Context, uri string) (*jobs.Job, error)
}

// Storage is the workspace surface the operation needs.
type Storage interface {
	Get(ctx context.Context, uri string) (string, error)
	MoveTo(ctx context.Context, uri, mediaPackageID, elementID, filename string) (string, error)
	DeleteStaged(ctx context.Context, uri string) error
}

// JobSource reads the current state of submitted jobs.
type JobSource interface {
	GetByID(ctx context.Context, id int64) (*jobs.Job, error)
}

// Deps carries the collaborators of the operation.
type Deps struct {
	Executor     Executor
	Inspector    Inspector
	Storage      Storage
	Jobs         JobSource
	Logger       *slog.Logger
	PollInterval time.Duration
}
