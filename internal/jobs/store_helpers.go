package jobs

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const jobColumns = `id, job_type, operation, arguments_json, status, payload, error_message,
    job_load, created_at, started_at, completed_at, queue_time_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(scanner rowScanner) (*Job, error) {
	var (
		job         Job
		arguments   sql.NullString
		payload     sql.NullString
		errorMsg    sql.NullString
		createdAt   string
		startedAt   sql.NullString
		completedAt sql.NullString
		queueTimeMS int64
	)
	if err := scanner.Scan(
		&job.ID,
		&job.Type,
		&job.Operation,
		&arguments,
		&job.Status,
		&payload,
		&errorMsg,
		&job.Load,
		&createdAt,
		&startedAt,
		&completedAt,
		&queueTimeMS,
	); err != nil {
		return nil, err
	}

	if arguments.Valid && arguments.String != "" {
		if err := json.Unmarshal([]byte(arguments.String), &job.Arguments); err != nil {
			return nil, fmt.Errorf("decode arguments for job %d: %w", job.ID, err)
		}
	}
	job.Payload = payload.String
	job.ErrorMessage = errorMsg.String
	job.CreatedAt = parseTime(createdAt)
	job.StartedAt = parseTime(startedAt.String)
	job.CompletedAt = parseTime(completedAt.String)
	job.QueueTime = time.Duration(queueTimeMS) * time.Millisecond
	return &job, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func statusArgs(statuses []Status) []any {
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}
	return args
}
