package history_test

import (
	"fmt"
	"testing"

	"github.com/dukex/operion-studio/pkg/history"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// definitionWithSteps returns a definition holding n log steps named s0..s(n-1).
func definitionWithSteps(n int) models.WorkflowDefinition {
	steps := make([]models.Step, n)
	for i := range n {
		steps[i] = testutil.CreateTestStep(testutil.WithID(fmt.Sprintf("s%d", i)))
	}

	return testutil.CreateTestDefinition(steps)
}

func TestHistory_InitialSnapshotIsNotUndoable(t *testing.T) {
	t.Parallel()

	h := history.New(definitionWithSteps(0))

	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, definitionWithSteps(0), h.Undo())
	assert.Equal(t, 0, h.Pointer())
}

func TestHistory_UndoRedoInverse(t *testing.T) {
	t.Parallel()

	const edits = 6

	h := history.New(definitionWithSteps(0))
	for i := 1; i <= edits; i++ {
		h.Record(definitionWithSteps(i))
	}

	require.True(t, h.CanUndo())

	for i := edits - 1; i >= 0; i-- {
		assert.Equal(t, definitionWithSteps(i), h.Undo())
	}

	assert.False(t, h.CanUndo())
	assert.True(t, h.CanRedo())

	for i := 1; i <= edits; i++ {
		assert.Equal(t, definitionWithSteps(i), h.Redo())
	}

	assert.False(t, h.CanRedo())
	assert.Equal(t, definitionWithSteps(edits), h.Redo())
}

func TestHistory_RecordTruncatesRedoBranch(t *testing.T) {
	t.Parallel()

	h := history.New(definitionWithSteps(0))
	h.Record(definitionWithSteps(1))
	h.Record(definitionWithSteps(2))

	h.Undo()
	require.True(t, h.CanRedo())

	h.Record(definitionWithSteps(5))

	assert.False(t, h.CanRedo())
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, definitionWithSteps(5), h.Redo())
	assert.Equal(t, definitionWithSteps(1), h.Undo())
	assert.Equal(t, definitionWithSteps(0), h.Undo())
}

func TestHistory_BoundedLength(t *testing.T) {
	t.Parallel()

	h := history.New(definitionWithSteps(0), history.WithMaxHistory(3))
	for i := 1; i <= 5; i++ {
		h.Record(definitionWithSteps(i))
	}

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 2, h.Pointer())
	assert.Equal(t, definitionWithSteps(5), h.Current())

	assert.Equal(t, definitionWithSteps(4), h.Undo())
	assert.Equal(t, definitionWithSteps(3), h.Undo())
	assert.False(t, h.CanUndo())
}

func TestHistory_BoundedAfterUndo(t *testing.T) {
	t.Parallel()

	h := history.New(definitionWithSteps(0), history.WithMaxHistory(3))
	h.Record(definitionWithSteps(1))
	h.Record(definitionWithSteps(2))
	h.Undo()
	h.Record(definitionWithSteps(7))

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, definitionWithSteps(7), h.Current())
	assert.False(t, h.CanRedo())
}

func TestHistory_DefaultLimit(t *testing.T) {
	t.Parallel()

	h := history.New(definitionWithSteps(0))
	for i := 1; i <= history.DefaultMaxHistory+10; i++ {
		h.Record(definitionWithSteps(i))
	}

	assert.Equal(t, history.DefaultMaxHistory, h.Len())
	assert.Equal(t, history.DefaultMaxHistory-1, h.Pointer())
}

func TestHistory_SnapshotsAreImmutable(t *testing.T) {
	t.Parallel()

	state := definitionWithSteps(1)
	h := history.New(models.NewWorkflowDefinition())
	h.Record(state)

	state.Steps[0].Label = "changed after record"

	current := h.Current()
	assert.Equal(t, "Test Step", current.Steps[0].Label)

	current.Steps[0].Config["message"] = "changed after read"
	assert.Equal(t, "test", h.Current().Steps[0].Config["message"])
}
