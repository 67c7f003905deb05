package graph_test

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/registry"
	"github.com/dukex/operion-studio/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) *graph.Model {
	t.Helper()

	counter := 0

	return graph.NewModel(registry.NewDefault(slog.Default()), graph.WithIDGenerator(func() string {
		counter++

		return fmt.Sprintf("step-%d", counter)
	}))
}

func strPtr(s string) *string {
	return &s
}

func TestModel_AddStep(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTwoStepDefinition()

	out, step, err := m.AddStep(def, "delay", models.Position{X: 10, Y: 20})
	require.NoError(t, err)

	assert.Equal(t, "step-1", step.ID)
	assert.Equal(t, "delay", step.Type)
	assert.Equal(t, "Delay", step.Label)
	assert.Empty(t, step.Config)
	assert.NotNil(t, step.Config)
	assert.Empty(t, step.Next)
	assert.Nil(t, step.OnError)
	assert.Equal(t, models.Position{X: 10, Y: 20}, step.Position)

	assert.Equal(t, 3, out.StepCount())
	assert.Equal(t, 1, out.EdgeCount())

	// input untouched
	assert.Equal(t, 2, def.StepCount())
}

func TestModel_AddStep_IDsNeverReused(t *testing.T) {
	t.Parallel()

	m := graph.NewModel(registry.NewDefault(slog.Default()))
	def := models.NewWorkflowDefinition()

	def, first, err := m.AddStep(def, "log", models.Position{})
	require.NoError(t, err)

	def, err = m.RemoveStep(def, first.ID)
	require.NoError(t, err)

	_, second, err := m.AddStep(def, "log", models.Position{})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestModel_AddStep_UnknownType(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTwoStepDefinition()

	out, _, err := m.AddStep(def, "teleport", models.Position{})
	require.ErrorIs(t, err, graph.ErrUnknownStepType)
	assert.Equal(t, def, out)
}

func TestModel_UpdateStep(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a"), testutil.WithConfig(map[string]any{"message": "hi", "level": "info"})),
		testutil.CreateTestStep(testutil.WithID("b")),
	})

	out, err := m.UpdateStep(def, "a", graph.StepPatch{
		Label:   strPtr("Renamed"),
		Config:  map[string]any{"level": "warn", "extra": 1},
		OnError: strPtr("b"),
		RetryPolicy: &models.RetryPolicy{
			Policy:      models.RetryExponential,
			MaxAttempts: 3,
		},
	})
	require.NoError(t, err)

	step, ok := out.StepByID("a")
	require.True(t, ok)
	assert.Equal(t, "Renamed", step.Label)
	assert.Equal(t, map[string]any{"message": "hi", "level": "warn", "extra": 1}, step.Config)
	require.NotNil(t, step.OnError)
	assert.Equal(t, "b", *step.OnError)
	assert.Equal(t, &models.RetryPolicy{Policy: models.RetryExponential, MaxAttempts: 3}, step.RetryPolicy)

	original, _ := def.StepByID("a")
	assert.Equal(t, "info", original.Config["level"])
	assert.Nil(t, original.OnError)
}

func TestModel_UpdateStep_ConfigNilRemovesKey(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a"), testutil.WithConfig(map[string]any{"message": "hi"})),
	})

	out, err := m.UpdateStep(def, "a", graph.StepPatch{Config: map[string]any{"message": nil}})
	require.NoError(t, err)

	step, _ := out.StepByID("a")
	assert.NotContains(t, step.Config, "message")
}

func TestModel_UpdateStep_ClearOnError(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a"), testutil.WithOnError("b")),
		testutil.CreateTestStep(testutil.WithID("b")),
	})

	out, err := m.UpdateStep(def, "a", graph.StepPatch{OnError: strPtr("")})
	require.NoError(t, err)

	step, _ := out.StepByID("a")
	assert.Nil(t, step.OnError)
}

func TestModel_UpdateStep_RetryNoneNormalizesAttempts(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTwoStepDefinition()

	out, err := m.UpdateStep(def, "a", graph.StepPatch{
		RetryPolicy: &models.RetryPolicy{Policy: models.RetryNone, MaxAttempts: 7},
	})
	require.NoError(t, err)

	step, _ := out.StepByID("a")
	assert.Equal(t, &models.RetryPolicy{Policy: models.RetryNone, MaxAttempts: 1}, step.RetryPolicy)
}

func TestModel_UpdateStep_Errors(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTwoStepDefinition()

	tests := []struct {
		name  string
		id    string
		patch graph.StepPatch
		want  error
	}{
		{name: "missing step", id: "zzz", patch: graph.StepPatch{Label: strPtr("x")}, want: graph.ErrStepNotFound},
		{name: "missing on-error target", id: "a", patch: graph.StepPatch{OnError: strPtr("zzz")}, want: graph.ErrStepNotFound},
		{
			name:  "zero attempts",
			id:    "a",
			patch: graph.StepPatch{RetryPolicy: &models.RetryPolicy{Policy: models.RetryFixed}},
			want:  graph.ErrInvalidRetryPolicy,
		},
		{
			name:  "unknown policy",
			id:    "a",
			patch: graph.StepPatch{RetryPolicy: &models.RetryPolicy{Policy: "forever", MaxAttempts: 2}},
			want:  graph.ErrInvalidRetryPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, err := m.UpdateStep(def, tt.id, tt.patch)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, def, out)
		})
	}
}

func TestModel_Connect(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a")),
		testutil.CreateTestStep(testutil.WithID("b")),
		testutil.CreateTestStep(testutil.WithID("c")),
	})

	def, err := m.Connect(def, "a", "c")
	require.NoError(t, err)
	def, err = m.Connect(def, "a", "b")
	require.NoError(t, err)
	def, err = m.Connect(def, "a", "c")
	require.NoError(t, err)

	step, _ := def.StepByID("a")
	assert.Equal(t, []string{"c", "b"}, step.Next)
	assert.Equal(t, 2, def.EdgeCount())
}

func TestModel_Connect_SelfLoopAllowed(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTwoStepDefinition()

	out, err := m.Connect(def, "b", "b")
	require.NoError(t, err)

	step, _ := out.StepByID("b")
	assert.Equal(t, []string{"b"}, step.Next)
}

func TestModel_Connect_MissingStep(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTwoStepDefinition()

	_, err := m.Connect(def, "a", "zzz")
	assert.True(t, graph.IsStepNotFound(err))

	_, err = m.Connect(def, "zzz", "a")
	assert.True(t, graph.IsStepNotFound(err))
}

func TestModel_Disconnect(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTwoStepDefinition()

	out, err := m.Disconnect(def, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 0, out.EdgeCount())

	same, err := m.Disconnect(out, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, out, same)

	_, err = m.Disconnect(def, "zzz", "b")
	assert.ErrorIs(t, err, graph.ErrStepNotFound)
}

func TestModel_RemoveStep_Cascades(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a"), testutil.WithNext("b", "c"), testutil.WithOnError("b")),
		testutil.CreateTestStep(testutil.WithID("b"), testutil.WithNext("b", "c")),
		testutil.CreateTestStep(testutil.WithID("c"), testutil.WithNext("b"), testutil.WithOnError("b")),
		testutil.CreateTestStep(testutil.WithID("d"), testutil.WithOnError("c")),
	})

	out, err := m.RemoveStep(def, "b")
	require.NoError(t, err)

	assert.Equal(t, 3, out.StepCount())
	assert.False(t, out.HasStep("b"))

	for _, step := range out.Steps {
		assert.NotContains(t, step.Next, "b")

		if step.OnError != nil {
			assert.NotEqual(t, "b", *step.OnError)
		}
	}

	a, _ := out.StepByID("a")
	assert.Equal(t, []string{"c"}, a.Next)
	assert.Nil(t, a.OnError)

	d, _ := out.StepByID("d")
	require.NotNil(t, d.OnError)
	assert.Equal(t, "c", *d.OnError)

	assert.Empty(t, graph.ValidateIntegrity(out))
	assert.Equal(t, 4, def.StepCount())
}

func TestModel_RemoveStep_Missing(t *testing.T) {
	t.Parallel()

	m := newTestModel(t)
	def := testutil.CreateTwoStepDefinition()

	out, err := m.RemoveStep(def, "zzz")
	require.ErrorIs(t, err, graph.ErrStepNotFound)
	assert.Equal(t, def, out)
}
