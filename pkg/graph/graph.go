// Package graph implements the workflow step graph: adding, updating, connecting
// and removing steps while keeping every reference structurally valid.
//
// All operations are pure. They take a definition and return a new one; the
// input definition is never modified, which is what lets the editor keep it as
// a history snapshot.
package graph

import (
	"fmt"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/registry"
	"github.com/google/uuid"
)

// Model applies graph operations using a step type registry.
type Model struct {
	registry *registry.Registry
	newID    func() string
}

// Option configures a Model.
type Option func(*Model)

// WithIDGenerator replaces the default uuid generator. Generated ids must never repeat.
func WithIDGenerator(gen func() string) Option {
	return func(m *Model) {
		m.newID = gen
	}
}

// NewModel creates a graph model backed by the given registry.
func NewModel(reg *registry.Registry, opts ...Option) *Model {
	m := &Model{
		registry: reg,
		newID:    func() string { return uuid.New().String() },
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Registry returns the step type registry used by the model.
func (m *Model) Registry() *registry.Registry {
	return m.registry
}

// StepPatch lists the fields an update may change. Nil fields are left as they are.
type StepPatch struct {
	Label *string `json:"label,omitempty"`
	// Config is shallow-merged into the step config; a nil value removes the key.
	Config map[string]any `json:"config,omitempty"`
	// OnError replaces the fallback step; an empty string clears it.
	OnError     *string             `json:"on_error,omitempty"`
	RetryPolicy *models.RetryPolicy `json:"retry_policy,omitempty"`
	Position    *models.Position    `json:"position,omitempty"`
}

// AddStep appends a new unconnected step of the given type.
func (m *Model) AddStep(
	def models.WorkflowDefinition,
	stepType string,
	position models.Position,
) (models.WorkflowDefinition, models.Step, error) {
	spec, ok := m.registry.SpecFor(stepType)
	if !ok {
		return def, models.Step{}, &StepError{Op: "add", StepID: stepType, Err: ErrUnknownStepType}
	}

	step := models.Step{
		ID:       m.newID(),
		Type:     stepType,
		Label:    spec.Label,
		Config:   map[string]any{},
		Next:     []string{},
		Position: position,
	}

	out := def.Clone()
	out.Steps = append(out.Steps, step)

	return out, step.Clone(), nil
}

// UpdateStep applies a patch to one step.
func (m *Model) UpdateStep(def models.WorkflowDefinition, id string, patch StepPatch) (models.WorkflowDefinition, error) {
	idx := def.StepIndex(id)
	if idx < 0 {
		return def, &StepError{Op: "update", StepID: id, Err: ErrStepNotFound}
	}

	if patch.OnError != nil && *patch.OnError != "" && !def.HasStep(*patch.OnError) {
		return def, &StepError{Op: "update", StepID: *patch.OnError, Err: ErrStepNotFound}
	}

	var retry *models.RetryPolicy

	if patch.RetryPolicy != nil {
		normalized, err := normalizeRetryPolicy(*patch.RetryPolicy)
		if err != nil {
			return def, &StepError{Op: "update", StepID: id, Err: err}
		}

		retry = &normalized
	}

	out := def.Clone()
	step := &out.Steps[idx]

	if patch.Label != nil {
		step.Label = *patch.Label
	}

	for key, value := range patch.Config {
		if value == nil {
			delete(step.Config, key)

			continue
		}

		step.Config[key] = models.CloneValue(value)
	}

	if patch.OnError != nil {
		if *patch.OnError == "" {
			step.OnError = nil
		} else {
			target := *patch.OnError
			step.OnError = &target
		}
	}

	if retry != nil {
		step.RetryPolicy = retry
	}

	if patch.Position != nil {
		step.Position = *patch.Position
	}

	return out, nil
}

func normalizeRetryPolicy(p models.RetryPolicy) (models.RetryPolicy, error) {
	if !p.Policy.IsValid() {
		return p, fmt.Errorf("%w: unknown policy %q", ErrInvalidRetryPolicy, p.Policy)
	}

	if p.Policy == models.RetryNone {
		return models.RetryPolicy{Policy: models.RetryNone, MaxAttempts: 1}, nil
	}

	if p.MaxAttempts < 1 {
		return p, fmt.Errorf("%w: max attempts must be at least 1", ErrInvalidRetryPolicy)
	}

	return p, nil
}

// Connect appends to to from's successors unless it is already there.
// Self-loops and cycles are allowed; see FindCycles.
func (m *Model) Connect(def models.WorkflowDefinition, from, to string) (models.WorkflowDefinition, error) {
	idx := def.StepIndex(from)
	if idx < 0 {
		return def, &StepError{Op: "connect", StepID: from, Err: ErrStepNotFound}
	}

	if !def.HasStep(to) {
		return def, &StepError{Op: "connect", StepID: to, Err: ErrStepNotFound}
	}

	if def.Steps[idx].HasSuccessor(to) {
		return def, nil
	}

	out := def.Clone()
	out.Steps[idx].Next = append(out.Steps[idx].Next, to)

	return out, nil
}

// Disconnect removes to from from's successors. Missing edges are a no-op.
func (m *Model) Disconnect(def models.WorkflowDefinition, from, to string) (models.WorkflowDefinition, error) {
	idx := def.StepIndex(from)
	if idx < 0 {
		return def, &StepError{Op: "disconnect", StepID: from, Err: ErrStepNotFound}
	}

	if !def.Steps[idx].HasSuccessor(to) {
		return def, nil
	}

	out := def.Clone()
	out.Steps[idx].Next = without(out.Steps[idx].Next, to)

	return out, nil
}

// RemoveStep deletes a step, drops it from every successor list and clears every
// on-error link that pointed at it (null means the execution fails).
func (m *Model) RemoveStep(def models.WorkflowDefinition, id string) (models.WorkflowDefinition, error) {
	idx := def.StepIndex(id)
	if idx < 0 {
		return def, &StepError{Op: "remove", StepID: id, Err: ErrStepNotFound}
	}

	out := def.Clone()
	out.Steps = append(out.Steps[:idx], out.Steps[idx+1:]...)

	for i := range out.Steps {
		step := &out.Steps[i]
		step.Next = without(step.Next, id)

		if step.OnError != nil && *step.OnError == id {
			step.OnError = nil
		}
	}

	return out, nil
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}

	return out
}
