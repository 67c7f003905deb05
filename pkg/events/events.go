// Package events defines the events the studio backend publishes when workflows
// change or executions are requested.
package events

import (
	"time"

	"github.com/dukex/operion-studio/pkg/models"
)

type EventType string

// Topic carries every studio event.
const Topic = "studio.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowSavedEvent            EventType = "workflow.saved"
	WorkflowDeletedEvent          EventType = "workflow.deleted"
	WorkflowVariablesUpdatedEvent EventType = "workflow.variables.updated"
	ExecutionRequestedEvent       EventType = "execution.requested"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewBaseEvent fills the common fields of an event.
func NewBaseEvent(id string, eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         id,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
	}
}

type WorkflowSaved struct {
	BaseEvent

	StepCount int `json:"step_count"`
	EdgeCount int `json:"edge_count"`
}

func (e WorkflowSaved) GetType() EventType {
	return WorkflowSavedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (e WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

type WorkflowVariablesUpdated struct {
	BaseEvent

	Variables []string `json:"variables"`
}

func (e WorkflowVariablesUpdated) GetType() EventType {
	return WorkflowVariablesUpdatedEvent
}

// ExecutionRequested asks the execution engine to run a workflow. Values are
// already coerced; sensitive values travel unmasked and must not be logged.
type ExecutionRequested struct {
	BaseEvent

	ExecutionID string                      `json:"execution_id"`
	Values      map[string]any              `json:"values"`
	Variables   []models.VariableDefinition `json:"variables"`
}

func (e ExecutionRequested) GetType() EventType {
	return ExecutionRequestedEvent
}
