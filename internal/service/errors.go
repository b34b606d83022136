package service

import (
	"fmt"
	"strings"
)

// NotFoundError marks a missing survey, response, or draft.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidStateError marks an operation not allowed in the current status.
type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string { return e.Message }

// OutOfWindowError marks a submission outside the survey's start/end dates.
type OutOfWindowError struct {
	Message string
}

func (e *OutOfWindowError) Error() string { return e.Message }

// ConflictError marks a duplicate submission or a delete blocked by
// existing responses.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// FieldError is one per-question validation failure. Label is embedded so
// callers can render user-facing messages without a second lookup.
type FieldError struct {
	QuestionID string `json:"questionId"`
	Label      string `json:"label"`
	Message    string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Label, e.Message)
}

// ValidationError aggregates every violation found in one validation pass.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
