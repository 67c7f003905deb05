package graph_test

import (
	"log/slog"
	"testing"

	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/registry"
	"github.com/dukex/operion-studio/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(errs []graph.IntegrityError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Kind
	}

	return out
}

func TestValidateIntegrity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		def  models.WorkflowDefinition
		want []string
	}{
		{
			name: "valid graph",
			def:  testutil.CreateTwoStepDefinition(),
			want: []string{},
		},
		{
			name: "dangling next",
			def: testutil.CreateTestDefinition([]models.Step{
				testutil.CreateTestStep(testutil.WithID("a"), testutil.WithNext("ghost")),
			}),
			want: []string{graph.IntegrityDanglingNext},
		},
		{
			name: "dangling on-error",
			def: testutil.CreateTestDefinition([]models.Step{
				testutil.CreateTestStep(testutil.WithID("a"), testutil.WithOnError("ghost")),
			}),
			want: []string{graph.IntegrityDanglingOnError},
		},
		{
			name: "duplicate step id",
			def: testutil.CreateTestDefinition([]models.Step{
				testutil.CreateTestStep(testutil.WithID("a")),
				testutil.CreateTestStep(testutil.WithID("a")),
			}),
			want: []string{graph.IntegrityDuplicateStep},
		},
		{
			name: "duplicate variable",
			def: testutil.CreateTestDefinition(nil,
				testutil.CreateTestVariable("amount"),
				testutil.CreateTestVariable("amount"),
			),
			want: []string{graph.IntegrityDuplicateVariable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, kinds(graph.ValidateIntegrity(tt.def)))
		})
	}
}

func TestModel_Validate_TypesAndConfig(t *testing.T) {
	t.Parallel()

	m := graph.NewModel(registry.NewDefault(slog.Default()))
	def := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a"), testutil.WithType("teleport")),
		testutil.CreateTestStep(testutil.WithID("b"), testutil.WithType("delay"),
			testutil.WithConfig(map[string]any{"duration": "soon"})),
		testutil.CreateTestStep(testutil.WithID("c"), testutil.WithType("delay"),
			testutil.WithConfig(map[string]any{"duration": 3})),
	})

	errs := m.Validate(def)
	require.Len(t, errs, 2)
	assert.Equal(t, graph.IntegrityUnknownStepType, errs[0].Kind)
	assert.Equal(t, "a", errs[0].StepID)
	assert.Equal(t, graph.IntegrityInvalidConfig, errs[1].Kind)
	assert.Equal(t, "b", errs[1].StepID)
}

func TestFindCycles(t *testing.T) {
	t.Parallel()

	acyclic := testutil.CreateTwoStepDefinition()
	assert.Empty(t, graph.FindCycles(acyclic))

	selfLoop := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a"), testutil.WithNext("a")),
	})
	assert.Equal(t, [][]string{{"a"}}, graph.FindCycles(selfLoop))

	loop := testutil.CreateTestDefinition([]models.Step{
		testutil.CreateTestStep(testutil.WithID("a"), testutil.WithNext("b")),
		testutil.CreateTestStep(testutil.WithID("b"), testutil.WithNext("c")),
		testutil.CreateTestStep(testutil.WithID("c"), testutil.WithNext("a", "d")),
		testutil.CreateTestStep(testutil.WithID("d")),
	})

	cycles := graph.FindCycles(loop)
	require.Len(t, cycles, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cycles[0])
}
