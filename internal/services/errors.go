package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrExecution     = errors.New("execution error")
	ErrSerialization = errors.New("serialization error")
	ErrStorage       = errors.New("storage error")
	ErrInspection    = errors.New("inspection error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExecution
	}
	if err != nil {
		return &wrapped{marker: marker, detail: detail, err: err}
	}
	return &wrapped{marker: marker, detail: detail}
}

type wrapped struct {
	marker error
	detail string
	err    error
}

func (w *wrapped) Error() string {
	if w.err != nil {
		return fmt.Sprintf("%s: %s: %s", w.marker, w.detail, w.err)
	}
	return fmt.Sprintf("%s: %s", w.marker, w.detail)
}

func (w *wrapped) Unwrap() []error {
	if w.err == nil {
		return []error{w.marker}
	}
	return []error{w.marker, w.err}
}

// ErrorDetails is the human-facing part of a wrapped error.
type ErrorDetails struct {
	Kind    string
	Message string
}

// Details extracts the classification and stage message from err. The message
// follows the chain of wrapped causes. Errors that were not produced by Wrap
// report their full text as the message.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	var w *wrapped
	if errors.As(err, &w) {
		return ErrorDetails{Kind: Kind(err), Message: describe(w)}
	}
	return ErrorDetails{Kind: Kind(err), Message: err.Error()}
}

func describe(err error) string {
	w, ok := err.(*wrapped)
	if !ok {
		return err.Error()
	}
	if w.err == nil {
		return w.detail
	}
	return w.detail + ": " + describe(w.err)
}

// Kind returns the taxonomy label for err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrSerialization):
		return "serialization"
	case errors.Is(err, ErrInspection):
		return "inspection"
	case errors.Is(err, ErrStorage), errors.Is(err, ErrNotFound):
		return "storage"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "execution"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
