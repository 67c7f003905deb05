package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/operion-studio/pkg/eventbus"
	"github.com/dukex/operion-studio/pkg/events"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/otelhelper"
	"github.com/dukex/operion-studio/pkg/persistence"
	"github.com/dukex/operion-studio/pkg/variables"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Execution accepts launch requests: it re-validates the submitted values against
// the stored schema, records the execution and hands it to the engine through the
// event bus.
type Execution struct {
	persistence persistence.Persistence
	bus         eventbus.EventBus
	tracer      trace.Tracer
	logger      *slog.Logger
	validate    []variables.ValidateOption
}

// NewExecution creates a new execution service.
func NewExecution(
	persistence persistence.Persistence,
	bus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
	opts ...variables.ValidateOption,
) *Execution {
	return &Execution{
		persistence: persistence,
		bus:         bus,
		tracer:      tracer,
		logger:      logger,
		validate:    opts,
	}
}

// Launch validates values and queues an execution of the workflow.
func (e *Execution) Launch(ctx context.Context, workflowID string, values map[string]any) (*models.Execution, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "execution.launch",
		attribute.String(otelhelper.WorkflowIDKey, workflowID))
	defer span.End()

	workflow, err := e.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	defs := workflow.Definition.Variables

	coerced, errs := variables.Coerce(values, defs, e.validate...)
	if len(errs) > 0 {
		serviceErr := NewValidationError("Launch", "INVALID_VALUES",
			fmt.Sprintf("%d variable(s) failed validation", len(errs)), ErrInvalidValues)
		serviceErr.Variables = errs

		return nil, serviceErr
	}

	execution := &models.Execution{
		ID:         uuid.NewString(),
		WorkflowID: workflowID,
		Values:     variables.Mask(coerced, defs),
		Status:     models.ExecutionStatusQueued,
		CreatedAt:  time.Now().UTC(),
	}

	span.SetAttributes(attribute.String(otelhelper.ExecutionIDKey, execution.ID))

	if err := e.persistence.ExecutionRepository().Save(ctx, execution); err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save execution: %w", err)
	}

	event := events.ExecutionRequested{
		BaseEvent:   events.NewBaseEvent(e.bus.GenerateID(), events.ExecutionRequestedEvent, workflowID),
		ExecutionID: execution.ID,
		Values:      coerced,
		Variables:   defs,
	}

	if err := e.bus.Publish(ctx, workflowID, event); err != nil {
		otelhelper.SetError(span, err)

		execution.Status = models.ExecutionStatusDispatchFailed
		if saveErr := e.persistence.ExecutionRepository().Save(ctx, execution); saveErr != nil {
			e.logger.ErrorContext(ctx, "Failed to mark execution as not dispatched",
				"execution_id", execution.ID, "error", saveErr)
		}

		return nil, fmt.Errorf("failed to publish execution request: %w", err)
	}

	e.logger.InfoContext(ctx, "Execution requested",
		"workflow_id", workflowID, "execution_id", execution.ID, "variables", len(defs))

	return execution, nil
}

// FetchByID returns a stored execution. Sensitive values were masked when stored.
func (e *Execution) FetchByID(ctx context.Context, id string) (*models.Execution, error) {
	return e.persistence.ExecutionRepository().GetByID(ctx, id)
}

// ListByWorkflow returns the executions of a workflow, oldest first.
func (e *Execution) ListByWorkflow(ctx context.Context, workflowID string) ([]*models.Execution, error) {
	return e.persistence.ExecutionRepository().GetByWorkflow(ctx, workflowID)
}
