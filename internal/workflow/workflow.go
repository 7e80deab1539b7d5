package workflow

import (
	"context"
	"strings"
	"time"

	"execmany/internal/mediapackage"
)

// Action tells the engine how to proceed after an operation finishes.
type Action string

const (
	// ActionContinue advances to the next operation.
	ActionContinue Action = "CONTINUE"
	// ActionSkip records the operation as skipped.
	ActionSkip Action = "SKIP"
)

// Operation is one configured step of a workflow definition.
type Operation struct {
	ID            string            `toml:"id" json:"id"`
	Template      string            `toml:"template" json:"template"`
	Description   string            `toml:"description" json:"description,omitempty"`
	Configuration map[string]string `toml:"configuration" json:"configuration,omitempty"`
}

// Config returns the trimmed configuration value for key, or "" when unset.
func (o *Operation) Config(key string) string {
	if o == nil || o.Configuration == nil {
		return ""
	}
	return strings.TrimSpace(o.Configuration[key])
}

// ConfigList splits a comma separated configuration value, dropping blanks.
func (o *Operation) ConfigList(key string) []string {
	raw := o.Config(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Name returns the template name, falling back to the ID.
func (o *Operation) Name() string {
	if o == nil {
		return ""
	}
	if name := strings.TrimSpace(o.Template); name != "" {
		return name
	}
	return strings.TrimSpace(o.ID)
}

// Instance is a running workflow as seen by one operation.
type Instance struct {
	ID        string
	Package   *mediapackage.MediaPackage
	Operation *Operation
}

// Result is what an operation hands back to the engine.
type Result struct {
	Package     *mediapackage.MediaPackage
	Properties  map[string]string
	Action      Action
	TimeInQueue time.Duration
}

// Handler is implemented by workflow operations.
type Handler interface {
	Start(context.Context, *Instance) (*Result, error)
	Skip(context.Context, *Instance) (*Result, error)
}

// HealthChecker is implemented by handlers that can report readiness.
type HealthChecker interface {
	HealthCheck(context.Context) Health
}

// Health summarizes the readiness of an operation handler.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}
