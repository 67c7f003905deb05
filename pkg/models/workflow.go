// Package models defines the workflow editing domain: steps, step types, variables and executions.
package models

import "time"

// Workflow is a stored workflow document as kept by the backend.
type Workflow struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Definition  WorkflowDefinition `json:"definition"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
