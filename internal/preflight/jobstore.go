package preflight

import (
	"context"
	"fmt"

	"execmany/internal/config"
	"execmany/internal/jobs"
)

// CheckJobStore opens the job database and summarizes its contents.
func CheckJobStore(ctx context.Context, cfg *config.Config) Result {
	const name = "Job store"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	store, err := jobs.Open(cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.JobDatabasePath(), err)}
	}
	defer store.Close()
	stats, err := store.Stats(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.JobDatabasePath(), err)}
	}
	return Result{
		Name:   name,
		Passed: true,
		Detail: fmt.Sprintf("%s (%d queued, %d running, %d failed)",
			cfg.JobDatabasePath(), stats[jobs.StatusQueued], stats[jobs.StatusRunning], stats[jobs.StatusFailed]),
	}
}
