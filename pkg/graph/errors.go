package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrStepNotFound is returned when an operation references a step id that is not in the definition.
	ErrStepNotFound = errors.New("step not found")

	// ErrUnknownStepType is returned when adding a step whose type is not registered.
	ErrUnknownStepType = errors.New("unknown step type")

	// ErrInvalidRetryPolicy is returned for retry policies outside the supported shape.
	ErrInvalidRetryPolicy = errors.New("invalid retry policy")
)

// StepError wraps a graph error with the operation and step involved.
type StepError struct {
	Op     string
	StepID string
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.StepID, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func (e *StepError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsStepNotFound checks if an error indicates a missing step.
func IsStepNotFound(err error) bool {
	return errors.Is(err, ErrStepNotFound)
}

// IntegrityError kinds.
const (
	IntegrityDuplicateStep     = "duplicate_step"
	IntegrityDanglingNext      = "dangling_next"
	IntegrityDanglingOnError   = "dangling_on_error"
	IntegrityDuplicateVariable = "duplicate_variable"
	IntegrityUnknownStepType   = "unknown_step_type"
	IntegrityInvalidConfig     = "invalid_config"
)

// IntegrityError is one structural problem found in a definition before save.
type IntegrityError struct {
	Kind      string `json:"kind"`
	StepID    string `json:"step_id,omitempty"`
	Reference string `json:"reference,omitempty"`
	Message   string `json:"message"`
}

func (e IntegrityError) Error() string {
	return e.Message
}
