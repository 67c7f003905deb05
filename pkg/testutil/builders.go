// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/google/uuid"
)

// CreateTestStep creates a test Step with default values that can be overridden.
func CreateTestStep(overrides ...func(*models.Step)) models.Step {
	step := models.Step{
		ID:       uuid.New().String(),
		Type:     "log",
		Label:    "Test Step",
		Config:   map[string]any{"message": "test", "level": "info"},
		Next:     []string{},
		Position: models.Position{X: 100, Y: 200},
	}

	for _, override := range overrides {
		override(&step)
	}

	return step
}

// WithID sets the step id.
func WithID(id string) func(*models.Step) {
	return func(s *models.Step) {
		s.ID = id
	}
}

// WithType sets the step type.
func WithType(stepType string) func(*models.Step) {
	return func(s *models.Step) {
		s.Type = stepType
	}
}

// WithConfig sets the step configuration.
func WithConfig(config map[string]any) func(*models.Step) {
	return func(s *models.Step) {
		s.Config = config
	}
}

// WithNext sets the step successors.
func WithNext(ids ...string) func(*models.Step) {
	return func(s *models.Step) {
		s.Next = ids
	}
}

// WithOnError sets the step fallback.
func WithOnError(id string) func(*models.Step) {
	return func(s *models.Step) {
		s.OnError = &id
	}
}

// CreateTestDefinition builds a definition from steps and variables.
func CreateTestDefinition(steps []models.Step, variables ...models.VariableDefinition) models.WorkflowDefinition {
	def := models.NewWorkflowDefinition()
	def.Steps = append(def.Steps, steps...)
	def.Variables = append(def.Variables, variables...)

	return def
}

// CreateTwoStepDefinition returns a definition with steps "a" -> "b": 2 steps, 1 edge.
func CreateTwoStepDefinition() models.WorkflowDefinition {
	return CreateTestDefinition([]models.Step{
		CreateTestStep(WithID("a"), WithType("http_request"), WithConfig(map[string]any{}), WithNext("b")),
		CreateTestStep(WithID("b"), WithType("log")),
	})
}

// CreateTestVariable creates a string variable with the given name.
func CreateTestVariable(name string, overrides ...func(*models.VariableDefinition)) models.VariableDefinition {
	v := models.VariableDefinition{
		Name:  name,
		Type:  models.VariableTypeString,
		Scope: models.VariableScopeWorkflow,
	}

	for _, override := range overrides {
		override(&v)
	}

	return v
}
