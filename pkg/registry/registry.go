// Package registry provides the static step type catalog used by the workflow editor.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"github.com/dukex/operion-studio/pkg/models"
)

var (
	// ErrDuplicateStepType is returned when a type key is registered twice.
	ErrDuplicateStepType = errors.New("step type already registered")

	// ErrDuplicateFieldKey is returned when a step type declares the same field key twice.
	ErrDuplicateFieldKey = errors.New("duplicate field key")
)

// Registry maps step type names to their configuration field specification.
type Registry struct {
	logger *slog.Logger
	specs  map[string]models.StepTypeSpec
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger: log,
		specs:  make(map[string]models.StepTypeSpec),
	}
}

// NewDefault creates a registry holding the built-in step catalog.
func NewDefault(log *slog.Logger) *Registry {
	r := NewRegistry(log)
	r.RegisterDefaultSteps()

	return r
}

// Register adds a step type. Type keys are unique across the registry and
// field keys are unique within a type.
func (r *Registry) Register(spec models.StepTypeSpec) error {
	if spec.Type == "" {
		return errors.New("step type key is required")
	}

	if _, exists := r.specs[spec.Type]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateStepType, spec.Type)
	}

	seen := make(map[string]struct{}, len(spec.Fields))
	for _, field := range spec.Fields {
		if _, dup := seen[field.Key]; dup {
			return fmt.Errorf("%w: %s.%s", ErrDuplicateFieldKey, spec.Type, field.Key)
		}

		seen[field.Key] = struct{}{}
	}

	r.specs[spec.Type] = cloneSpec(spec)
	r.logger.Debug("Registered step type", "type", spec.Type, "fields", len(spec.Fields))

	return nil
}

// SpecFor looks up the spec of a step type.
func (r *Registry) SpecFor(stepType string) (models.StepTypeSpec, bool) {
	spec, ok := r.specs[stepType]
	if !ok {
		return models.StepTypeSpec{}, false
	}

	return cloneSpec(spec), true
}

// Fields returns the field list of a step type. Unknown types yield an empty
// list so the editor can fall back to a bare name/id form.
func (r *Registry) Fields(stepType string) []models.FieldSpec {
	spec, ok := r.specs[stepType]
	if !ok {
		return []models.FieldSpec{}
	}

	return cloneFields(spec.Fields)
}

// Has reports whether stepType is registered.
func (r *Registry) Has(stepType string) bool {
	_, ok := r.specs[stepType]

	return ok
}

// Types returns every registered spec ordered by type key.
func (r *Registry) Types() []models.StepTypeSpec {
	out := make([]models.StepTypeSpec, 0, len(r.specs))
	for _, spec := range r.specs {
		out = append(out, cloneSpec(spec))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Type < out[j].Type
	})

	return out
}

// HealthCheck reports whether the catalog is populated.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.specs) == 0 {
		return "No step types registered", false
	}

	return fmt.Sprintf("%d step types registered", len(r.specs)), true
}

func cloneSpec(spec models.StepTypeSpec) models.StepTypeSpec {
	spec.Fields = cloneFields(spec.Fields)

	return spec
}

func cloneFields(fields []models.FieldSpec) []models.FieldSpec {
	out := slices.Clone(fields)
	for i := range out {
		out[i].Options = slices.Clone(out[i].Options)
	}

	return out
}
