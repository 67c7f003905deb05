// Package persistence provides the storage abstraction for workflows, their variable
// schemas and launched executions.
package persistence

import (
	"context"

	"github.com/dukex/operion-studio/pkg/models"
)

// Persistence is a storage backend.
type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflows. Definitions are stored as whole documents;
// the variable schema travels inside the definition.
type WorkflowRepository interface {
	GetAll(ctx context.Context) ([]*models.Workflow, error)
	// GetByID returns an error wrapping ErrWorkflowNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	// Delete is idempotent.
	Delete(ctx context.Context, id string) error
}

// ExecutionRepository stores execution requests accepted by the backend.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.Execution) error
	// GetByID returns an error wrapping ErrExecutionNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (*models.Execution, error)
	GetByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error)
}
