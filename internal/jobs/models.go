package jobs

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{StatusQueued, StatusRunning, StatusSucceeded, StatusFailed}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

// Type distinguishes the services producing jobs.
type Type string

const (
	TypeExecute Type = "execute"
	TypeInspect Type = "inspect"
)

// Spec describes a job to create.
type Spec struct {
	Type      Type
	Operation string
	Arguments []string
	Load      float64
}

// Job is a persisted unit of asynchronous work.
type Job struct {
	ID           int64
	Type         Type
	Operation    string
	Arguments    []string
	Status       Status
	Payload      string
	ErrorMessage string
	Load         float64
	CreatedAt    time.Time
	StartedAt    time.Time
	CompletedAt  time.Time
	QueueTime    time.Duration
}
