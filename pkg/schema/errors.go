package schema

import (
	"errors"
	"fmt"
)

// FieldError represents a single field validation failure.
type FieldError struct {
	Key    string // Field name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *FieldError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("field %q: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("field %q: %s (got %T)", e.Key, e.Reason, e.Value)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}

// MissingKeys returns the keys of FieldErrors whose reason is "required".
func MissingKeys(err error) []string {
	var keys []string
	for _, e := range ValidationErrors(err) {
		var fe *FieldError
		if errors.As(e, &fe) && fe.Reason == reasonRequired {
			keys = append(keys, fe.Key)
		}
	}
	return keys
}
