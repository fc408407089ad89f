package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic checks via errors.Is.
var (
	// ErrValidation marks malformed, self-referential or conflicting definitions.
	ErrValidation = errors.New("validation error")

	// ErrType marks a value that does not match a parameter's declared type.
	ErrType = errors.New("type error")

	// ErrNotFound marks an alias or name lookup miss.
	ErrNotFound = errors.New("not found")

	// ErrDependencyCycle marks a constraint graph with no valid topological order.
	ErrDependencyCycle = errors.New("dependency cycle detected")

	// ErrRequiredPredecessorFailed marks a command skipped because a requireBefore
	// predecessor failed or did not run.
	ErrRequiredPredecessorFailed = errors.New("required predecessor failed")

	// ErrProfileNotFound is returned when a saved configuration profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")
)

// ValidationError reports a definition that violates a registration rule.
type ValidationError struct {
	Kind string // "parameter", "command", "cycle" or "phase"
	Name string // Offending definition, empty when the name itself is missing
	Msg  string // The violated rule
}

// NewValidationError builds a ValidationError.
func NewValidationError(kind, name, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Name: name, Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s: %s", ErrValidation, e.Msg)
	}
	return fmt.Sprintf("%s: %s %q: %s", ErrValidation, e.Kind, e.Name, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// TypeError reports a value that cannot be coerced to a parameter's type.
type TypeError struct {
	Param string
	Type  string
	Value any
	Err   error
}

func (e *TypeError) Error() string {
	msg := fmt.Sprintf("invalid type for %s: expected %s, got %#v", e.Param, e.Type, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TypeError) Unwrap() error { return ErrType }

// NotFoundError reports a lookup miss.
type NotFoundError struct {
	Kind string // "alias", "parameter", "command", "cycle", "action"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Kind, e.Name, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// DependencyCycleError reports a cycle in a phase's constraint graph.
// It matches both ErrDependencyCycle and ErrValidation.
type DependencyCycleError struct {
	Phase string
	Path  []string
}

func (e *DependencyCycleError) Error() string {
	return fmt.Sprintf("%s: %s in phase %q: %s", ErrValidation, ErrDependencyCycle, e.Phase, strings.Join(e.Path, " -> "))
}

func (e *DependencyCycleError) Unwrap() []error {
	return []error{ErrDependencyCycle, ErrValidation}
}

// SkipError is the structured reason a command was skipped instead of executed.
type SkipError struct {
	Command     string
	Predecessor string
	Reason      string // "failed", "skipped" or "did not run"
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("command %q skipped: required predecessor %q %s", e.Command, e.Predecessor, e.Reason)
}

func (e *SkipError) Unwrap() error { return ErrRequiredPredecessorFailed }
