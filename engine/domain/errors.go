package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for lookup and graph-integrity failures.
var (
	ErrNotFound      = errors.New("employee not found")
	ErrAmbiguous     = errors.New("ambiguous employee reference")
	ErrNoManager     = errors.New("no manager")
	ErrBrokenRef     = errors.New("broken manager reference")
	ErrCycleDetected = errors.New("manager cycle detected")

	ErrDuplicateID           = errors.New("duplicate employee id")
	ErrMissingField          = errors.New("missing required field")
	ErrUnknownEmploymentType = errors.New("unknown employment type")
)

// RecordError wraps a sentinel with the offending record field and value.
type RecordError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *RecordError) Unwrap() error { return e.Wrapped }

// NewRecordError creates a RecordError.
func NewRecordError(field, value string, wrapped error) *RecordError {
	return &RecordError{Field: field, Value: value, Wrapped: wrapped}
}

// AmbiguousError reports a reference that matched more than one employee.
// Candidates carries every match so callers can list them instead of guessing.
type AmbiguousError struct {
	Ref        string
	Candidates []Employee
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.Name
	}
	return fmt.Sprintf("%s: %q matches %s", ErrAmbiguous, e.Ref, strings.Join(names, ", "))
}

func (e *AmbiguousError) Unwrap() error { return ErrAmbiguous }

// NoManagerError reports that a manager chain ended before the requested
// depth. Employee is the person at the end of the chain; Hop is the hop at
// which the walk stopped (1 means the starting employee has no manager).
type NoManagerError struct {
	Employee Employee
	Hop      int
}

func (e *NoManagerError) Error() string {
	return fmt.Sprintf("%s: %s (%s) at hop %d", ErrNoManager, e.Employee.Name, e.Employee.ID, e.Hop)
}

func (e *NoManagerError) Unwrap() error { return ErrNoManager }
