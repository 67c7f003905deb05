package mocks

import (
	"context"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock of the workflow backend API as seen by the editor and the launch flow.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) FetchWorkflow(ctx context.Context, workflowID string) (models.WorkflowDefinition, error) {
	args := m.Called(ctx, workflowID)

	return args.Get(0).(models.WorkflowDefinition), args.Error(1)
}

func (m *MockBackend) SaveWorkflow(ctx context.Context, workflowID string, def models.WorkflowDefinition) error {
	args := m.Called(ctx, workflowID, def)

	return args.Error(0)
}

func (m *MockBackend) FetchVariables(ctx context.Context, workflowID string) ([]models.VariableDefinition, error) {
	args := m.Called(ctx, workflowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]models.VariableDefinition), args.Error(1)
}

func (m *MockBackend) SaveVariables(ctx context.Context, workflowID string, defs []models.VariableDefinition) error {
	args := m.Called(ctx, workflowID, defs)

	return args.Error(0)
}

func (m *MockBackend) Execute(ctx context.Context, workflowID string, values map[string]any) (string, error) {
	args := m.Called(ctx, workflowID, values)

	return args.String(0), args.Error(1)
}
