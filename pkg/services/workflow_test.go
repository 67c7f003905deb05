package services_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/dukex/operion-studio/pkg/editor"
	"github.com/dukex/operion-studio/pkg/events"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/persistence"
	"github.com/dukex/operion-studio/pkg/registry"
	"github.com/dukex/operion-studio/pkg/services"
	"github.com/dukex/operion-studio/pkg/testutil"
	"github.com/dukex/operion-studio/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_PutCreatesAndReplaces(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectPublish(events.WorkflowSavedEvent).Return(nil)

	created, err := f.workflows.Put(t.Context(), "wf-1", services.PutWorkflowRequest{
		Name:       "Deploy",
		Definition: testutil.CreateTwoStepDefinition(),
	})
	require.NoError(t, err)
	assert.Equal(t, "wf-1", created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := f.workflows.Put(t.Context(), "wf-1", services.PutWorkflowRequest{
		Definition: models.NewWorkflowDefinition(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Deploy", updated.Name, "empty name keeps the stored one")
	assert.Equal(t, 0, updated.Definition.StepCount())

	all, err := f.workflows.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	f.bus.AssertNumberOfCalls(t, "Publish", 2)
}

func TestWorkflow_PutRejectsInvalidDefinition(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	dangling := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a"), testutil.WithNext("ghost")),
	})

	_, err := f.workflows.Put(t.Context(), "wf-1", services.PutWorkflowRequest{Definition: dangling})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
	assert.ErrorIs(t, err, services.ErrInvalidDefinition)

	serviceErr, ok := services.AsServiceError(err)
	require.True(t, ok)
	assert.Len(t, serviceErr.Details, 1)

	badConfig := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithType("delay"), testutil.WithConfig(map[string]any{"duration": "soon"})),
	})

	_, err = f.workflows.Put(t.Context(), "wf-1", services.PutWorkflowRequest{Definition: badConfig})
	assert.ErrorIs(t, err, services.ErrInvalidDefinition)

	duplicated := testutil.CreateTestDefinition(nil,
		testutil.CreateTestVariable("region"), testutil.CreateTestVariable("region"))

	_, err = f.workflows.Put(t.Context(), "wf-1", services.PutWorkflowRequest{Definition: duplicated})
	assert.ErrorIs(t, err, services.ErrInvalidVariables)
	assert.ErrorIs(t, err, variables.ErrDuplicateName)

	_, err = f.workflows.FetchByID(t.Context(), "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err), "rejected definitions are never stored")
	f.bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_Variables(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectPublish(events.WorkflowVariablesUpdatedEvent).Return(nil)

	_, err := f.workflows.GetVariables(t.Context(), "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	defs := []models.VariableDefinition{testutil.CreateTestVariable("region")}
	require.NoError(t, f.workflows.PutVariables(t.Context(), "wf-1", defs))

	loaded, err := f.workflows.GetVariables(t.Context(), "wf-1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "region", loaded[0].Name)

	err = f.workflows.PutVariables(t.Context(), "wf-1", []models.VariableDefinition{
		testutil.CreateTestVariable("1bad"),
	})
	assert.ErrorIs(t, err, variables.ErrInvalidName)
	assert.True(t, services.IsValidationError(err))
}

func TestWorkflow_PublishFailureDoesNotFailSave(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectPublish(events.WorkflowSavedEvent).Return(errors.New("broker down"))

	_, err := f.workflows.Put(t.Context(), "wf-1", services.PutWorkflowRequest{Definition: models.NewWorkflowDefinition()})
	require.NoError(t, err)

	_, err = f.workflows.FetchByID(t.Context(), "wf-1")
	assert.NoError(t, err)
}

func TestWorkflow_Delete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectPublish(events.WorkflowSavedEvent).Return(nil)
	f.expectPublish(events.WorkflowDeletedEvent).Return(nil)

	err := f.workflows.Delete(t.Context(), "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	_, err = f.workflows.Put(t.Context(), "wf-1", services.PutWorkflowRequest{Definition: models.NewWorkflowDefinition()})
	require.NoError(t, err)
	require.NoError(t, f.workflows.Delete(t.Context(), "wf-1"))

	_, err = f.workflows.FetchByID(t.Context(), "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflow_HealthCheck(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	message, ok := f.workflows.HealthCheck(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)
}

func TestWorkflow_BacksEditorSessions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectPublish(events.WorkflowSavedEvent).Return(nil)
	f.expectPublish(events.WorkflowVariablesUpdatedEvent).Return(nil)

	model := graph.NewModel(registry.NewDefault(slog.Default()))
	session := editor.NewSession("wf-9", testutil.CreateTwoStepDefinition(), model)

	_, err := session.AddStep("delay", models.Position{X: 10, Y: 10})
	require.NoError(t, err)

	name := "env"
	idx := session.AddVariable()
	require.NoError(t, session.UpdateVariableAt(idx, variables.Patch{Name: &name}))

	require.NoError(t, session.Save(t.Context(), f.workflows))
	assert.False(t, session.VariablesDirty())

	stored, err := f.workflows.FetchByID(t.Context(), "wf-9")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Definition.StepCount())
	require.Len(t, stored.Definition.Variables, 1)
	assert.Equal(t, "env", stored.Definition.Variables[0].Name)
}
