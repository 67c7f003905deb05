// Package editor hosts a workflow editing session: the in-memory definition, its
// undo/redo history and its variable schema. Every committed edit is recorded in
// history exactly once; failed or empty edits record nothing.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/history"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/variables"
)

// ErrIntegrity is returned by PrepareSave when the graph has structural errors.
var ErrIntegrity = errors.New("workflow definition has integrity errors")

// Backend persists a workflow definition and its variable schema.
type Backend interface {
	SaveWorkflow(ctx context.Context, workflowID string, def models.WorkflowDefinition) error
	variables.Store
}

// Session is one editing session. It is driven by a single user and is not safe
// for concurrent use; Manager adds locking for the HTTP host.
type Session struct {
	workflowID   string
	model        *graph.Model
	history      *history.History
	variables    *variables.Schema
	current      models.WorkflowDefinition
	logger       *slog.Logger
	generalError string
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	logger      *slog.Logger
	historyOpts []history.Option
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}

// WithHistoryOptions passes options to the undo/redo history.
func WithHistoryOptions(opts ...history.Option) Option {
	return func(c *sessionConfig) {
		c.historyOpts = append(c.historyOpts, opts...)
	}
}

// NewSession opens a session on a loaded (or empty) definition. The initial
// definition is history index 0.
func NewSession(workflowID string, initial models.WorkflowDefinition, model *graph.Model, opts ...Option) *Session {
	cfg := sessionConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	initial = initial.Clone()

	return &Session{
		workflowID: workflowID,
		model:      model,
		history:    history.New(initial, cfg.historyOpts...),
		variables:  variables.NewSchema(initial.Variables),
		current:    initial,
		logger:     cfg.logger.With("workflow_id", workflowID),
	}
}

// WorkflowID returns the id of the edited workflow.
func (s *Session) WorkflowID() string {
	return s.workflowID
}

// Definition returns a copy of the current definition.
func (s *Session) Definition() models.WorkflowDefinition {
	return s.current.Clone()
}

// Counts returns the number of steps and edges of the current definition.
func (s *Session) Counts() (int, int) {
	return s.current.StepCount(), s.current.EdgeCount()
}

// CanUndo reports whether there is an edit to undo.
func (s *Session) CanUndo() bool {
	return s.history.CanUndo()
}

// CanRedo reports whether there is an undone edit to redo.
func (s *Session) CanRedo() bool {
	return s.history.CanRedo()
}

// VariablesDirty reports whether the variable schema has unsaved edits.
func (s *Session) VariablesDirty() bool {
	return s.variables.Dirty()
}

// GeneralError returns the last transport error message, if any.
func (s *Session) GeneralError() string {
	return s.generalError
}

// commit makes next the current definition and records it, unless nothing changed.
func (s *Session) commit(op string, next models.WorkflowDefinition) bool {
	if reflect.DeepEqual(s.current, next) {
		return false
	}

	s.current = next
	s.history.Record(next)
	s.logger.Debug("Edit recorded", "op", op, "history", s.history.Len())

	return true
}

// AddStep adds an unconnected step of the given type.
func (s *Session) AddStep(stepType string, position models.Position) (models.Step, error) {
	next, step, err := s.model.AddStep(s.current, stepType, position)
	if err != nil {
		return models.Step{}, err
	}

	s.commit("add_step", next)

	return step, nil
}

// UpdateStep applies a committed patch to one step.
func (s *Session) UpdateStep(id string, patch graph.StepPatch) error {
	next, err := s.model.UpdateStep(s.current, id, patch)
	if err != nil {
		return err
	}

	s.commit("update_step", next)

	return nil
}

// Connect adds an edge from one step to another.
func (s *Session) Connect(from, to string) error {
	next, err := s.model.Connect(s.current, from, to)
	if err != nil {
		return err
	}

	s.commit("connect", next)

	return nil
}

// Disconnect removes an edge.
func (s *Session) Disconnect(from, to string) error {
	next, err := s.model.Disconnect(s.current, from, to)
	if err != nil {
		return err
	}

	s.commit("disconnect", next)

	return nil
}

// RemoveStep deletes a step and repairs every reference to it.
func (s *Session) RemoveStep(id string) error {
	next, err := s.model.RemoveStep(s.current, id)
	if err != nil {
		return err
	}

	s.commit("remove_step", next)

	return nil
}

// AddVariable appends a blank variable and returns its index.
func (s *Session) AddVariable() int {
	idx := s.variables.Add()
	s.commitVariables("add_variable")

	return idx
}

// AddVariableWith appends a row already filled in by patch. The row and its
// values are one history entry.
func (s *Session) AddVariableWith(patch variables.Patch) (int, error) {
	idx := s.variables.Add()
	if err := s.variables.UpdateAt(idx, patch); err != nil {
		return 0, err
	}

	s.commitVariables("add_variable")

	return idx, nil
}

// UpdateVariable patches the variable with the given name.
func (s *Session) UpdateVariable(name string, patch variables.Patch) error {
	if err := s.variables.Update(name, patch); err != nil {
		return err
	}

	s.commitVariables("update_variable")

	return nil
}

// UpdateVariableAt patches the variable at index i.
func (s *Session) UpdateVariableAt(i int, patch variables.Patch) error {
	if err := s.variables.UpdateAt(i, patch); err != nil {
		return err
	}

	s.commitVariables("update_variable")

	return nil
}

// RemoveVariable deletes the variable with the given name.
func (s *Session) RemoveVariable(name string) error {
	if err := s.variables.Remove(name); err != nil {
		return err
	}

	s.commitVariables("remove_variable")

	return nil
}

// RemoveVariableAt deletes the variable at index i.
func (s *Session) RemoveVariableAt(i int) error {
	if err := s.variables.RemoveAt(i); err != nil {
		return err
	}

	s.commitVariables("remove_variable")

	return nil
}

func (s *Session) commitVariables(op string) {
	next := s.current.Clone()
	next.Variables = s.variables.Definitions()
	s.commit(op, next)
}

// Undo restores the previous snapshot. It is a no-op when nothing can be undone.
func (s *Session) Undo() models.WorkflowDefinition {
	if s.history.CanUndo() {
		s.restore(s.history.Undo())
	}

	return s.Definition()
}

// Redo re-applies the next snapshot. It is a no-op when nothing can be redone.
func (s *Session) Redo() models.WorkflowDefinition {
	if s.history.CanRedo() {
		s.restore(s.history.Redo())
	}

	return s.Definition()
}

func (s *Session) restore(def models.WorkflowDefinition) {
	variablesChanged := !reflect.DeepEqual(s.current.Variables, def.Variables)
	s.current = def

	if variablesChanged {
		s.variables.Replace(def.Variables)
	}
}

// ValidateIntegrity checks the current definition's references and types.
func (s *Session) ValidateIntegrity() []graph.IntegrityError {
	return s.model.Validate(s.current)
}

// SavePlan is a snapshot captured for saving. Persisting it does not touch the
// session, so edits can continue while the save is in flight.
type SavePlan struct {
	WorkflowID string
	Definition models.WorkflowDefinition
}

// PrepareSave runs the local pre-save checks and captures the current definition.
// No network call happens when a check fails.
func (s *Session) PrepareSave() (*SavePlan, error) {
	if err := variables.Preflight(s.current.Variables); err != nil {
		return nil, err
	}

	if errs := graph.ValidateIntegrity(s.current); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIntegrity, errs[0].Message)
	}

	return &SavePlan{WorkflowID: s.workflowID, Definition: s.current.Clone()}, nil
}

// Persist writes the workflow definition and then its variable schema.
func (p *SavePlan) Persist(ctx context.Context, backend Backend) error {
	if err := backend.SaveWorkflow(ctx, p.WorkflowID, p.Definition); err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	if err := backend.SaveVariables(ctx, p.WorkflowID, p.Definition.Variables); err != nil {
		return fmt.Errorf("failed to save variables: %w", err)
	}

	return nil
}

// CompleteSave records the outcome of a persisted plan. Failures go to the
// general error slot; the model and history are left as they are.
func (s *Session) CompleteSave(plan *SavePlan, err error) {
	if err != nil {
		s.generalError = err.Error()
		s.logger.Warn("Save failed", "error", err)

		return
	}

	s.generalError = ""

	if reflect.DeepEqual(plan.Definition.Variables, s.current.Variables) {
		s.variables.MarkClean()
	}

	s.logger.Info("Workflow saved", "steps", plan.Definition.StepCount(), "edges", plan.Definition.EdgeCount())
}

// Save checks, persists and completes in one call.
func (s *Session) Save(ctx context.Context, backend Backend) error {
	plan, err := s.PrepareSave()
	if err != nil {
		return err
	}

	err = plan.Persist(ctx, backend)
	s.CompleteSave(plan, err)

	return err
}

// SaveVariables saves only the variable schema.
func (s *Session) SaveVariables(ctx context.Context, store variables.Store) error {
	err := s.variables.Save(ctx, s.workflowID, store)
	if err != nil && !variables.IsSchemaError(err) {
		s.generalError = err.Error()

		return err
	}

	if err == nil {
		s.generalError = ""
	}

	return err
}
