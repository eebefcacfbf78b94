package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrPlanNotFound      = errors.New("intervention not found")
	ErrPlanLocked        = errors.New("intervention is already active and can no longer be edited")
	ErrInvalidTransition = errors.New("invalid intervention status transition")
	ErrPlanCompleted     = errors.New("intervention is already completed")
	ErrQuestionNotFound  = errors.New("question not found in intervention")
	ErrChoiceNotFound    = errors.New("choice not found in question")
	ErrPermissionDenied  = errors.New("permission denied")
)

// FieldError describes a problem with one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed input that never reached the database.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func NewValidationError(msg string, fields ...FieldError) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

// Validationf builds a ValidationError without field details.
func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return strings.Join(msgs, "; ")
}

// CastError is returned when a path or body value cannot be converted to the
// expected identifier type.
type CastError struct {
	Path  string `json:"path"`
	Value string `json:"value"`
	Kind  string `json:"kind"`
}

func (e *CastError) Error() string {
	return fmt.Sprintf("Cast to %s failed for value %q at path %q", e.Kind, e.Value, e.Path)
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
