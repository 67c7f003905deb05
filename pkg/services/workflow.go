package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/operion-studio/pkg/eventbus"
	"github.com/dukex/operion-studio/pkg/events"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/otelhelper"
	"github.com/dukex/operion-studio/pkg/persistence"
	"github.com/dukex/operion-studio/pkg/variables"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
)

type Workflow struct {
	persistence persistence.Persistence
	model       *graph.Model
	publisher   eventbus.EventBus
	tracer      trace.Tracer
	logger      *slog.Logger
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(
	persistence persistence.Persistence,
	model *graph.Model,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Workflow {
	return &Workflow{
		persistence: persistence,
		model:       model,
		publisher:   publisher,
		tracer:      tracer,
		logger:      logger,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every workflow, newest first.
func (w *Workflow) List(ctx context.Context) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.persistence.WorkflowRepository().GetByID(ctx, id)
}

// PutWorkflowRequest replaces a workflow document. Empty name and description
// keep the stored ones.
type PutWorkflowRequest struct {
	Name        string                    `json:"name"        validate:"max=255"`
	Description string                    `json:"description"`
	Definition  models.WorkflowDefinition `json:"definition"`
}

// Put validates and stores a full definition, creating the workflow if needed.
func (w *Workflow) Put(ctx context.Context, id string, req PutWorkflowRequest) (*models.Workflow, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.put",
		attribute.String(otelhelper.WorkflowIDKey, id),
		attribute.Int(otelhelper.StepCountKey, req.Definition.StepCount()),
		attribute.Int(otelhelper.EdgeCountKey, req.Definition.EdgeCount()),
	)
	defer span.End()

	if id == "" {
		return nil, ErrWorkflowIDMissing
	}

	def := req.Definition.Clone()

	if err := w.validateDefinition(def); err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	workflow, err := w.loadOrNew(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if req.Name != "" {
		workflow.Name = req.Name
	}

	if req.Description != "" {
		workflow.Description = req.Description
	}

	workflow.Definition = def

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	w.publish(ctx, id, events.WorkflowSaved{
		BaseEvent: w.newBaseEvent(events.WorkflowSavedEvent, id),
		StepCount: def.StepCount(),
		EdgeCount: def.EdgeCount(),
	})

	return workflow, nil
}

func (w *Workflow) validateDefinition(def models.WorkflowDefinition) error {
	if err := variables.Preflight(def.Variables); err != nil {
		return NewValidationError("Put", "INVALID_VARIABLES", err.Error(), fmt.Errorf("%w: %w", ErrInvalidVariables, err))
	}

	errs := w.model.Validate(def)
	if len(errs) == 0 {
		return nil
	}

	details := make([]string, len(errs))
	for i, e := range errs {
		details[i] = e.Message
	}

	serviceErr := NewValidationError("Put", "INVALID_DEFINITION",
		fmt.Sprintf("definition has %d problem(s): %s", len(errs), details[0]), ErrInvalidDefinition)
	serviceErr.Details = details

	return serviceErr
}

// Delete removes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	if _, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID); err != nil {
		return err
	}

	err := w.persistence.WorkflowRepository().Delete(ctx, workflowID)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	w.publish(ctx, workflowID, events.WorkflowDeleted{
		BaseEvent: w.newBaseEvent(events.WorkflowDeletedEvent, workflowID),
	})

	return nil
}

// GetVariables returns the variable schema of a workflow.
func (w *Workflow) GetVariables(ctx context.Context, workflowID string) ([]models.VariableDefinition, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	return workflow.Definition.Clone().Variables, nil
}

// PutVariables replaces the variable schema, creating an empty workflow if needed.
// Name collisions and invalid names are rejected.
func (w *Workflow) PutVariables(ctx context.Context, workflowID string, defs []models.VariableDefinition) error {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.put_variables",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.Int(otelhelper.VariableCount, len(defs)),
	)
	defer span.End()

	if workflowID == "" {
		return ErrWorkflowIDMissing
	}

	if err := variables.Preflight(defs); err != nil {
		otelhelper.SetError(span, err)

		return NewValidationError("PutVariables", "INVALID_VARIABLES", err.Error(), fmt.Errorf("%w: %w", ErrInvalidVariables, err))
	}

	workflow, err := w.loadOrNew(ctx, workflowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	workflow.Definition.Variables = make([]models.VariableDefinition, len(defs))
	for i, d := range defs {
		workflow.Definition.Variables[i] = d.Clone()
	}

	if err := w.persistence.WorkflowRepository().Save(ctx, workflow); err != nil {
		otelhelper.SetError(span, err)

		return fmt.Errorf("failed to save variables: %w", err)
	}

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}

	w.publish(ctx, workflowID, events.WorkflowVariablesUpdated{
		BaseEvent: w.newBaseEvent(events.WorkflowVariablesUpdatedEvent, workflowID),
		Variables: names,
	})

	return nil
}

// SaveWorkflow stores a definition for an editing session, keeping the stored
// name and description.
func (w *Workflow) SaveWorkflow(ctx context.Context, workflowID string, def models.WorkflowDefinition) error {
	_, err := w.Put(ctx, workflowID, PutWorkflowRequest{Definition: def})

	return err
}

// SaveVariables stores the variable schema of an editing session.
func (w *Workflow) SaveVariables(ctx context.Context, workflowID string, defs []models.VariableDefinition) error {
	return w.PutVariables(ctx, workflowID, defs)
}

func (w *Workflow) loadOrNew(ctx context.Context, id string) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if persistence.IsWorkflowNotFound(err) {
		return &models.Workflow{ID: id, Definition: models.NewWorkflowDefinition()}, nil
	}

	if err != nil {
		return nil, err
	}

	return workflow, nil
}

func (w *Workflow) newBaseEvent(eventType events.EventType, workflowID string) events.BaseEvent {
	var id string
	if w.publisher != nil {
		id = w.publisher.GenerateID()
	}

	return events.NewBaseEvent(id, eventType, workflowID)
}

// publish notifies subscribers. Failures are logged, not returned.
func (w *Workflow) publish(ctx context.Context, key string, event eventbus.Event) {
	if w.publisher == nil {
		return
	}

	if err := w.publisher.Publish(ctx, key, event); err != nil {
		w.logger.WarnContext(ctx, "Failed to publish event", "event_type", event.GetType(), "workflow_id", key, "error", err)
	}
}
