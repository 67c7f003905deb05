package editor_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/dukex/operion-studio/pkg/editor"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/mocks"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/registry"
	"github.com/dukex/operion-studio/pkg/testutil"
	"github.com/dukex/operion-studio/pkg/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newModel() *graph.Model {
	counter := 0

	return graph.NewModel(registry.NewDefault(slog.Default()), graph.WithIDGenerator(func() string {
		counter++

		return fmt.Sprintf("step-%d", counter)
	}))
}

func newSession(def models.WorkflowDefinition) *editor.Session {
	return editor.NewSession("wf-1", def, newModel())
}

func ptr[T any](v T) *T {
	return &v
}

func TestSession_AddDelayStepThenUndo(t *testing.T) {
	t.Parallel()

	s := newSession(testutil.CreateTwoStepDefinition())

	steps, edges := s.Counts()
	assert.Equal(t, 2, steps)
	assert.Equal(t, 1, edges)
	assert.False(t, s.CanUndo())

	step, err := s.AddStep("delay", models.Position{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, "delay", step.Type)
	assert.Empty(t, step.Next)

	steps, edges = s.Counts()
	assert.Equal(t, 3, steps)
	assert.Equal(t, 1, edges)
	assert.True(t, s.CanUndo())

	s.Undo()

	steps, edges = s.Counts()
	assert.Equal(t, 2, steps)
	assert.Equal(t, 1, edges)
	assert.False(t, s.CanUndo())
	assert.True(t, s.CanRedo())

	s.Redo()

	steps, _ = s.Counts()
	assert.Equal(t, 3, steps)
	assert.False(t, s.CanRedo())
}

func TestSession_FailedEditRecordsNothing(t *testing.T) {
	t.Parallel()

	s := newSession(testutil.CreateTwoStepDefinition())
	before := s.Definition()

	err := s.Connect("a", "missing")
	require.Error(t, err)
	assert.True(t, graph.IsStepNotFound(err))

	err = s.UpdateStep("missing", graph.StepPatch{Label: ptr("x")})
	assert.True(t, graph.IsStepNotFound(err))

	_, err = s.AddStep("teleport", models.Position{})
	assert.ErrorIs(t, err, graph.ErrUnknownStepType)

	assert.Equal(t, before, s.Definition())
	assert.False(t, s.CanUndo())
}

func TestSession_NoOpEditRecordsNothing(t *testing.T) {
	t.Parallel()

	s := newSession(testutil.CreateTwoStepDefinition())

	require.NoError(t, s.Connect("a", "b"))
	assert.False(t, s.CanUndo())
}

func TestSession_RemoveStepIsOneUndoableEdit(t *testing.T) {
	t.Parallel()

	def := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a"), testutil.WithNext("b"), testutil.WithOnError("b")),
		testutil.CreateTestStep(testutil.WithID("b")),
	})
	s := newSession(def)

	require.NoError(t, s.RemoveStep("b"))

	steps, edges := s.Counts()
	assert.Equal(t, 1, steps)
	assert.Equal(t, 0, edges)
	assert.Nil(t, s.Definition().Steps[0].OnError)

	s.Undo()
	assert.Equal(t, def, s.Definition())
}

func TestSession_RedoBranchDiscardedByNewEdit(t *testing.T) {
	t.Parallel()

	s := newSession(testutil.CreateTwoStepDefinition())

	_, err := s.AddStep("log", models.Position{})
	require.NoError(t, err)

	s.Undo()
	assert.True(t, s.CanRedo())

	require.NoError(t, s.Disconnect("a", "b"))
	assert.False(t, s.CanRedo())
}

func TestSession_VariableEditsFollowUndo(t *testing.T) {
	t.Parallel()

	s := newSession(testutil.CreateTwoStepDefinition())

	idx := s.AddVariable()
	require.NoError(t, s.UpdateVariableAt(idx, variables.Patch{
		Name: ptr("retries"),
		Type: ptr(models.VariableTypeNumber),
	}))

	vars := s.Definition().Variables
	require.Len(t, vars, 1)
	assert.Equal(t, "retries", vars[0].Name)
	assert.True(t, s.VariablesDirty())

	s.Undo()
	assert.Equal(t, "", s.Definition().Variables[0].Name)

	s.Undo()
	assert.Empty(t, s.Definition().Variables)

	err := s.RemoveVariable("retries")
	assert.ErrorIs(t, err, variables.ErrVariableNotFound)
}

func TestSession_AddVariableWithIsOneUndoableEdit(t *testing.T) {
	t.Parallel()

	s := newSession(testutil.CreateTwoStepDefinition())

	idx, err := s.AddVariableWith(variables.Patch{
		Name: ptr("amount"),
		Type: ptr(models.VariableTypeNumber),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	vars := s.Definition().Variables
	require.Len(t, vars, 1)
	assert.Equal(t, "amount", vars[0].Name)
	assert.Equal(t, models.VariableTypeNumber, vars[0].Type)

	s.Undo()
	assert.Empty(t, s.Definition().Variables)
	assert.False(t, s.CanUndo())

	s.Redo()
	require.Len(t, s.Definition().Variables, 1)
	assert.Equal(t, "amount", s.Definition().Variables[0].Name)
}

func TestSession_SaveBlockedByPreflight(t *testing.T) {
	t.Parallel()

	backend := &mocks.MockBackend{}
	s := newSession(testutil.CreateTwoStepDefinition())
	s.AddVariable()

	err := s.Save(context.Background(), backend)
	require.Error(t, err)
	assert.ErrorIs(t, err, variables.ErrEmptyName)
	backend.AssertNotCalled(t, "SaveWorkflow", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_SaveBlockedByIntegrity(t *testing.T) {
	t.Parallel()

	backend := &mocks.MockBackend{}
	def := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a"), testutil.WithNext("ghost")),
	})
	s := newSession(def)

	err := s.Save(context.Background(), backend)
	assert.ErrorIs(t, err, editor.ErrIntegrity)
	backend.AssertNotCalled(t, "SaveWorkflow", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_SavePersistsWorkflowThenVariables(t *testing.T) {
	t.Parallel()

	backend := &mocks.MockBackend{}
	s := newSession(testutil.CreateTwoStepDefinition())
	idx := s.AddVariable()
	require.NoError(t, s.UpdateVariableAt(idx, variables.Patch{Name: ptr("region")}))

	backend.On("SaveWorkflow", mock.Anything, "wf-1", s.Definition()).Return(nil).Once()
	backend.On("SaveVariables", mock.Anything, "wf-1", s.Definition().Variables).Return(nil).Once()

	require.NoError(t, s.Save(context.Background(), backend))
	assert.False(t, s.VariablesDirty())
	assert.Empty(t, s.GeneralError())
	backend.AssertExpectations(t)
}

func TestSession_SaveFailureKeepsModel(t *testing.T) {
	t.Parallel()

	backend := &mocks.MockBackend{}
	s := newSession(testutil.CreateTwoStepDefinition())
	_, err := s.AddStep("delay", models.Position{})
	require.NoError(t, err)

	before := s.Definition()

	backend.On("SaveWorkflow", mock.Anything, "wf-1", mock.Anything).Return(errors.New("connection refused"))

	err = s.Save(context.Background(), backend)
	require.Error(t, err)
	assert.Contains(t, s.GeneralError(), "connection refused")
	assert.Equal(t, before, s.Definition())
	assert.True(t, s.CanUndo())
	backend.AssertNotCalled(t, "SaveVariables", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_EditsDuringInFlightSave(t *testing.T) {
	t.Parallel()

	backend := &mocks.MockBackend{}
	s := newSession(testutil.CreateTwoStepDefinition())
	idx := s.AddVariable()
	require.NoError(t, s.UpdateVariableAt(idx, variables.Patch{Name: ptr("region")}))

	plan, err := s.PrepareSave()
	require.NoError(t, err)

	_, err = s.AddStep("delay", models.Position{})
	require.NoError(t, err)
	require.NoError(t, s.UpdateVariable("region", variables.Patch{Required: ptr(true)}))

	backend.On("SaveWorkflow", mock.Anything, "wf-1", plan.Definition).Return(nil)
	backend.On("SaveVariables", mock.Anything, "wf-1", plan.Definition.Variables).Return(nil)

	err = plan.Persist(context.Background(), backend)
	s.CompleteSave(plan, err)
	require.NoError(t, err)

	steps, _ := s.Counts()
	assert.Equal(t, 3, steps)
	assert.Len(t, plan.Definition.Steps, 2)
	assert.True(t, s.VariablesDirty())
}

func TestSession_SaveVariablesOnly(t *testing.T) {
	t.Parallel()

	backend := &mocks.MockBackend{}
	s := newSession(testutil.CreateTwoStepDefinition())
	idx := s.AddVariable()
	require.NoError(t, s.UpdateVariableAt(idx, variables.Patch{Name: ptr("region")}))

	backend.On("SaveVariables", mock.Anything, "wf-1", mock.Anything).Return(errors.New("timeout")).Once()
	require.Error(t, s.SaveVariables(context.Background(), backend))
	assert.Equal(t, "failed to save variables: timeout", s.GeneralError())
	assert.True(t, s.VariablesDirty())

	backend.On("SaveVariables", mock.Anything, "wf-1", mock.Anything).Return(nil).Once()
	require.NoError(t, s.SaveVariables(context.Background(), backend))
	assert.Empty(t, s.GeneralError())
	assert.False(t, s.VariablesDirty())
	backend.AssertNotCalled(t, "SaveWorkflow", mock.Anything, mock.Anything, mock.Anything)
}
