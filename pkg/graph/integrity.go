package graph

import (
	"fmt"

	"github.com/dukex/operion-studio/pkg/models"
)

// ValidateIntegrity checks that ids are unique and every next/on-error reference
// resolves. It runs before save; interactive edits stay valid by construction.
func ValidateIntegrity(def models.WorkflowDefinition) []IntegrityError {
	var errs []IntegrityError

	ids := make(map[string]int, len(def.Steps))
	for _, step := range def.Steps {
		ids[step.ID]++
	}

	reported := make(map[string]bool)

	for _, step := range def.Steps {
		if ids[step.ID] > 1 && !reported[step.ID] {
			reported[step.ID] = true
			errs = append(errs, IntegrityError{
				Kind:    IntegrityDuplicateStep,
				StepID:  step.ID,
				Message: fmt.Sprintf("step id %q is used %d times", step.ID, ids[step.ID]),
			})
		}

		for _, next := range step.Next {
			if ids[next] == 0 {
				errs = append(errs, IntegrityError{
					Kind:      IntegrityDanglingNext,
					StepID:    step.ID,
					Reference: next,
					Message:   fmt.Sprintf("step %q connects to missing step %q", step.ID, next),
				})
			}
		}

		if step.OnError != nil && ids[*step.OnError] == 0 {
			errs = append(errs, IntegrityError{
				Kind:      IntegrityDanglingOnError,
				StepID:    step.ID,
				Reference: *step.OnError,
				Message:   fmt.Sprintf("step %q falls back to missing step %q", step.ID, *step.OnError),
			})
		}
	}

	names := make(map[string]bool, len(def.Variables))
	for _, v := range def.Variables {
		if names[v.Name] {
			errs = append(errs, IntegrityError{
				Kind:      IntegrityDuplicateVariable,
				Reference: v.Name,
				Message:   fmt.Sprintf("variable %q is declared more than once", v.Name),
			})

			continue
		}

		names[v.Name] = true
	}

	return errs
}

// Validate runs ValidateIntegrity and also checks step types and step configs
// against the registry.
func (m *Model) Validate(def models.WorkflowDefinition) []IntegrityError {
	errs := ValidateIntegrity(def)

	for _, step := range def.Steps {
		if !m.registry.Has(step.Type) {
			errs = append(errs, IntegrityError{
				Kind:      IntegrityUnknownStepType,
				StepID:    step.ID,
				Reference: step.Type,
				Message:   fmt.Sprintf("step %q has unknown type %q", step.ID, step.Type),
			})

			continue
		}

		for _, err := range m.registry.ValidateConfig(step.Type, step.Config) {
			errs = append(errs, IntegrityError{
				Kind:    IntegrityInvalidConfig,
				StepID:  step.ID,
				Message: fmt.Sprintf("step %q: %v", step.ID, err),
			})
		}
	}

	return errs
}
