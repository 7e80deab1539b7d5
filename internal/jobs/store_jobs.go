package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidTransition reports a status change the lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid job transition")

// Create inserts a queued job.
func (s *Store) Create(ctx context.Context, spec Spec) (*Job, error) {
	if strings.TrimSpace(string(spec.Type)) == "" {
		return nil, errors.New("job type is required")
	}
	args, err := json.Marshal(spec.Arguments)
	if err != nil {
		return nil, fmt.Errorf("marshal arguments: %w", err)
	}
	load := spec.Load
	if load <= 0 {
		load = 1.0
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO jobs (job_type, operation, arguments_json, status, job_load, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		spec.Type,
		spec.Operation,
		string(args),
		StatusQueued,
		load,
		formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. A missing job yields nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// MarkRunning moves a queued job to running and records its queue time.
func (s *Store) MarkRunning(ctx context.Context, id int64) (*Job, error) {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("mark running: job %d not found", id)
	}
	if job.Status != StatusQueued {
		return nil, fmt.Errorf("%w: job %d is %s", ErrInvalidTransition, id, job.Status)
	}
	now := time.Now()
	queued := max(now.Sub(job.CreatedAt), 0)
	if err := s.transition(ctx, id, []Status{StatusQueued},
		`status = ?, started_at = ?, queue_time_ms = ?`,
		StatusRunning, formatTime(now), queued.Milliseconds(),
	); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// MarkSucceeded completes a running job with its payload.
func (s *Store) MarkSucceeded(ctx context.Context, id int64, payload string) error {
	return s.transition(ctx, id, []Status{StatusRunning},
		`status = ?, payload = ?, completed_at = ?`,
		StatusSucceeded, nullableString(payload), formatTime(time.Now()),
	)
}

// MarkFailed completes a queued or running job with an error message. A job
// that never started is charged its whole lifetime as queue time.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	job, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("mark failed: job %d not found", id)
	}
	now := time.Now()
	queued := job.QueueTime
	if job.StartedAt.IsZero() {
		queued = max(now.Sub(job.CreatedAt), 0)
	}
	return s.transition(ctx, id, []Status{StatusQueued, StatusRunning},
		`status = ?, error_message = ?, completed_at = ?, queue_time_ms = ?`,
		StatusFailed, nullableString(message), formatTime(now), queued.Milliseconds(),
	)
}

func (s *Store) transition(ctx context.Context, id int64, from []Status, set string, args ...any) error {
	query := `UPDATE jobs SET ` + set + ` WHERE id = ? AND status IN (` + makePlaceholders(len(from)) + `)`
	params := append(append([]any{}, args...), id)
	params = append(params, statusArgs(from)...)
	res, err := s.execWithRetry(ctx, query, params...)
	if err != nil {
		return fmt.Errorf("update job %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: job %d is not %s", ErrInvalidTransition, id, joinStatuses(from))
	}
	return nil
}

func joinStatuses(statuses []Status) string {
	parts := make([]string, len(statuses))
	for i, status := range statuses {
		parts[i] = string(status)
	}
	return strings.Join(parts, " or ")
}

// List returns jobs filtered by status set (or all jobs when no status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		args = statusArgs(statuses)
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Stats returns a count of jobs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Clear removes terminal jobs and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs WHERE status IN (?, ?)`, StatusSucceeded, StatusFailed)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

// FailInFlight fails every queued or running job. Used when a previous
// process exited without finishing its jobs.
func (s *Store) FailInFlight(ctx context.Context, reason string) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, completed_at = ? WHERE status IN (?, ?)`,
		StatusFailed, reason, formatTime(time.Now()), StatusQueued, StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("fail in-flight jobs: %w", err)
	}
	return res.RowsAffected()
}
