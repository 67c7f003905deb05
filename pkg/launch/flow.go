// Package launch drives the execution launch flow: load the variable schema,
// collect values, validate them and dispatch the execution request.
package launch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/variables"
)

// State is a step of the launch state machine.
type State string

const (
	StateIdle          State = "idle"
	StateLoading       State = "loading"
	StateAwaitingInput State = "awaiting_input"
	StateValidating    State = "validating"
	StateInvalid       State = "invalid"
	StateDispatching   State = "dispatching"
	StateDone          State = "done"
)

var (
	// ErrSchemaNotFound may be returned by a SchemaSource when the workflow has no
	// variable schema yet. The flow treats it as zero variables.
	ErrSchemaNotFound = errors.New("variable schema not found")

	// ErrInvalidState is returned when an action is not allowed in the current state.
	ErrInvalidState = errors.New("action not allowed in current launch state")
)

// SchemaSource fetches the declared variables of a workflow.
type SchemaSource interface {
	FetchVariables(ctx context.Context, workflowID string) ([]models.VariableDefinition, error)
}

// Dispatcher sends an execution request and returns the new execution id.
type Dispatcher interface {
	Execute(ctx context.Context, workflowID string, values map[string]any) (string, error)
}

// Flow is one launch attempt for one workflow. It is not safe for concurrent use.
type Flow struct {
	workflowID   string
	source       SchemaSource
	dispatcher   Dispatcher
	logger       *slog.Logger
	validateOpts []variables.ValidateOption
	onTransition func(from, to State)

	state       State
	defs        []models.VariableDefinition
	errs        []models.VariableError
	executionID string
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the flow logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Flow) {
		f.logger = logger
	}
}

// WithValidateOptions passes options to the variable validation pass.
func WithValidateOptions(opts ...variables.ValidateOption) Option {
	return func(f *Flow) {
		f.validateOpts = append(f.validateOpts, opts...)
	}
}

// OnTransition registers a callback invoked on every state change.
func OnTransition(fn func(from, to State)) Option {
	return func(f *Flow) {
		f.onTransition = fn
	}
}

// NewFlow creates an idle launch flow.
func NewFlow(workflowID string, source SchemaSource, dispatcher Dispatcher, opts ...Option) *Flow {
	f := &Flow{
		workflowID: workflowID,
		source:     source,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		state:      StateIdle,
	}

	for _, opt := range opts {
		opt(f)
	}

	f.logger = f.logger.With("workflow_id", workflowID)

	return f
}

// State returns the current state.
func (f *Flow) State() State {
	return f.state
}

// Definitions returns the loaded variable schema.
func (f *Flow) Definitions() []models.VariableDefinition {
	return f.defs
}

// Errors returns the errors of the last load or submit.
func (f *Flow) Errors() []models.VariableError {
	return f.errs
}

// ExecutionID returns the id of the dispatched execution once the flow is done.
func (f *Flow) ExecutionID() string {
	return f.executionID
}

// Load fetches the variable schema and waits for input. A missing schema counts
// as zero variables; any other failure returns the flow to idle.
func (f *Flow) Load(ctx context.Context) error {
	if f.state != StateIdle && f.state != StateAwaitingInput {
		return fmt.Errorf("load in %s: %w", f.state, ErrInvalidState)
	}

	f.transition(StateLoading)
	f.errs = nil

	defs, err := f.source.FetchVariables(ctx, f.workflowID)
	if err != nil && !errors.Is(err, ErrSchemaNotFound) {
		f.logger.ErrorContext(ctx, "Failed to load variable schema", "error", err)
		f.errs = []models.VariableError{models.NewGeneralError(err.Error())}
		f.transition(StateIdle)

		return fmt.Errorf("failed to load variable schema: %w", err)
	}

	if defs == nil {
		defs = []models.VariableDefinition{}
	}

	f.defs = defs
	f.transition(StateAwaitingInput)

	return nil
}

// Submit validates values and, when they are valid, dispatches the execution.
// Validation and dispatch problems are returned as a list and leave the flow
// awaiting input; the returned error is only set for misuse of the flow.
func (f *Flow) Submit(ctx context.Context, values map[string]any) ([]models.VariableError, error) {
	if f.state != StateAwaitingInput {
		return nil, fmt.Errorf("submit in %s: %w", f.state, ErrInvalidState)
	}

	f.transition(StateValidating)

	coerced, errs := variables.Coerce(values, f.defs, f.validateOpts...)
	if len(errs) > 0 {
		f.errs = errs
		f.transition(StateInvalid)
		f.logger.InfoContext(ctx, "Launch values rejected", "errors", len(errs))
		f.transition(StateAwaitingInput)

		return errs, nil
	}

	f.errs = nil
	f.transition(StateDispatching)

	executionID, err := f.dispatcher.Execute(ctx, f.workflowID, coerced)
	if err != nil {
		f.logger.ErrorContext(ctx, "Failed to dispatch execution", "error", err)
		f.errs = []models.VariableError{models.NewGeneralError(err.Error())}
		f.transition(StateAwaitingInput)

		return f.errs, nil
	}

	f.executionID = executionID
	f.transition(StateDone)
	f.logger.InfoContext(ctx, "Execution dispatched", "execution_id", executionID)

	return nil, nil
}

func (f *Flow) transition(to State) {
	from := f.state
	f.state = to

	f.logger.Debug("Launch state changed", "from", from, "to", to)

	if f.onTransition != nil {
		f.onTransition(from, to)
	}
}
