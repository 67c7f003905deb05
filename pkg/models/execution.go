package models

import "time"

// ExecutionStatus is the lifecycle state of a launched execution as seen by the editor.
type ExecutionStatus string

const (
	ExecutionStatusQueued ExecutionStatus = "queued"
	// ExecutionStatusDispatchFailed marks a request that was stored but could not be published.
	ExecutionStatusDispatchFailed ExecutionStatus = "dispatch_failed"
)

// ExecutionRequest is a launch attempt with the values the user submitted.
type ExecutionRequest struct {
	WorkflowID string         `json:"workflow_id" validate:"required"`
	Values     map[string]any `json:"values"`
}

// Execution is an accepted execution request. Values are stored masked; the
// unmasked values only travel on the execution.requested event.
type Execution struct {
	ID         string          `json:"id"`
	WorkflowID string          `json:"workflow_id"`
	Values     map[string]any  `json:"values"`
	Status     ExecutionStatus `json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
}
