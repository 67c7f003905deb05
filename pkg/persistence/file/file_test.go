package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/persistence"
	"github.com/dukex/operion-studio/pkg/persistence/file"
	"github.com/dukex/operion-studio/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistence_HealthCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	assert.NoError(t, file.NewPersistence("file://"+dir).HealthCheck(context.Background()))
	assert.Error(t, file.NewPersistence(filepath.Join(dir, "missing")).HealthCheck(context.Background()))
}

func TestWorkflowRepository_SaveAndGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).WorkflowRepository()

	def := testutil.CreateTwoStepDefinition()
	def.Variables = append(def.Variables, testutil.CreateTestVariable("region"))

	workflow := &models.Workflow{Name: "Deploy", Definition: def}
	require.NoError(t, repo.Save(ctx, workflow))
	assert.NotEmpty(t, workflow.ID)
	assert.False(t, workflow.CreatedAt.IsZero())

	loaded, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deploy", loaded.Name)
	assert.Equal(t, 2, loaded.Definition.StepCount())
	assert.Equal(t, 1, loaded.Definition.EdgeCount())
	require.Len(t, loaded.Definition.Variables, 1)
	assert.Equal(t, "region", loaded.Definition.Variables[0].Name)
}

func TestWorkflowRepository_NotFoundAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).WorkflowRepository()

	_, err := repo.GetByID(ctx, "nope")
	assert.True(t, persistence.IsWorkflowNotFound(err))

	workflow := &models.Workflow{ID: "wf-1", Definition: models.NewWorkflowDefinition()}
	require.NoError(t, repo.Save(ctx, workflow))
	require.NoError(t, repo.Delete(ctx, "wf-1"))
	require.NoError(t, repo.Delete(ctx, "wf-1"))

	_, err = repo.GetByID(ctx, "wf-1")
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepository_RejectsPathTraversal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).WorkflowRepository()

	_, err := repo.GetByID(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, persistence.ErrInvalidID)

	err = repo.Save(ctx, &models.Workflow{ID: "a/b"})
	assert.ErrorIs(t, err, persistence.ErrInvalidID)
}

func TestWorkflowRepository_GetAllNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := file.NewPersistence(t.TempDir()).WorkflowRepository()

	workflows, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, workflows)

	older := &models.Workflow{ID: "old", CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.Workflow{ID: "new"}
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	workflows, err = repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, workflows, 2)
	assert.Equal(t, "new", workflows[0].ID)
	assert.Equal(t, "old", workflows[1].ID)
}

func TestExecutionRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	repo := file.NewPersistence(root).ExecutionRepository()

	first := &models.Execution{
		ID: "exec-1", WorkflowID: "wf-1", Status: models.ExecutionStatusQueued,
		Values: map[string]any{"retries": 3.0}, CreatedAt: time.Now().Add(-time.Minute),
	}
	second := &models.Execution{ID: "exec-2", WorkflowID: "wf-1", CreatedAt: time.Now()}
	other := &models.Execution{ID: "exec-3", WorkflowID: "wf-2", CreatedAt: time.Now()}

	for _, e := range []*models.Execution{second, first, other} {
		require.NoError(t, repo.Save(ctx, e))
	}

	loaded, err := repo.GetByID(ctx, "exec-1")
	require.NoError(t, err)
	assert.Equal(t, 3.0, loaded.Values["retries"])
	assert.Equal(t, models.ExecutionStatusQueued, loaded.Status)

	_, err = repo.GetByID(ctx, "exec-9")
	assert.True(t, persistence.IsExecutionNotFound(err))

	require.NoError(t, os.WriteFile(filepath.Join(root, "executions", "broken.json"), []byte("{"), 0o600))

	byWorkflow, err := repo.GetByWorkflow(ctx, "wf-1")
	require.NoError(t, err)
	require.Len(t, byWorkflow, 2)
	assert.Equal(t, "exec-1", byWorkflow[0].ID)
	assert.Equal(t, "exec-2", byWorkflow[1].ID)
}
