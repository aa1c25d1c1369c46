package kpi

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingRequiredInput is returned when a required scenario field is absent or zero.
	ErrMissingRequiredInput = errors.New("missing required input parameters")
	// ErrInvalidInput is returned when a field is non-finite or outside its domain.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError describes which scenario fields were rejected and why.
// It unwraps to ErrMissingRequiredInput or ErrInvalidInput.
type InputError struct {
	Kind   error
	Fields []string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%v: %s: %s", e.Kind, strings.Join(e.Fields, ", "), e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Kind
}

func missing(fields ...string) *InputError {
	return &InputError{Kind: ErrMissingRequiredInput, Fields: fields, Reason: "required"}
}

func invalid(field, reason string) *InputError {
	return &InputError{Kind: ErrInvalidInput, Fields: []string{field}, Reason: reason}
}
