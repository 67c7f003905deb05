// Package web provides HTTP request and response types for the studio API.
package web

import (
	"github.com/dukex/operion-studio/pkg/editor"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
)

// PutWorkflowRequest is the full-document replace body of PUT /workflows/:id.
type PutWorkflowRequest struct {
	Name        string                    `json:"name"        validate:"max=255"`
	Description string                    `json:"description"`
	Definition  models.WorkflowDefinition `json:"definition"`
}

// VariablesBody is both the response of GET and the request of PUT /workflows/:id/variables.
type VariablesBody struct {
	Variables []models.VariableDefinition `json:"variables" validate:"dive"`
}

// LaunchRequest carries the raw values submitted from the launch form.
type LaunchRequest struct {
	Values map[string]any `json:"values"`
}

// LaunchResponse is the accepted execution id.
type LaunchResponse struct {
	ID string `json:"id"`
}

// StepTypeResponse is a palette entry with its generated config JSON Schema.
type StepTypeResponse struct {
	models.StepTypeSpec

	ConfigSchema map[string]any `json:"config_schema"`
}

// OpenSessionRequest opens an editing session on a stored workflow. Unknown
// workflows start from an empty definition.
type OpenSessionRequest struct {
	WorkflowID string `json:"workflow_id" validate:"required"`
}

// SessionResponse is the observable state of an editing session.
type SessionResponse struct {
	ID             string                    `json:"id"`
	WorkflowID     string                    `json:"workflow_id"`
	Definition     models.WorkflowDefinition `json:"definition"`
	StepCount      int                       `json:"step_count"`
	EdgeCount      int                       `json:"edge_count"`
	CanUndo        bool                      `json:"can_undo"`
	CanRedo        bool                      `json:"can_redo"`
	VariablesDirty bool                      `json:"variables_dirty"`
	GeneralError   string                    `json:"general_error,omitempty"`
}

// NewSessionResponse snapshots a session. Callers must hold the session lock.
func NewSessionResponse(id string, s *editor.Session) SessionResponse {
	steps, edges := s.Counts()

	return SessionResponse{
		ID:             id,
		WorkflowID:     s.WorkflowID(),
		Definition:     s.Definition(),
		StepCount:      steps,
		EdgeCount:      edges,
		CanUndo:        s.CanUndo(),
		CanRedo:        s.CanRedo(),
		VariablesDirty: s.VariablesDirty(),
		GeneralError:   s.GeneralError(),
	}
}

// AddStepRequest adds an unconnected step of a registered type.
type AddStepRequest struct {
	Type     string          `json:"type"     validate:"required"`
	Position models.Position `json:"position"`
}

// AddStepResponse returns the created step along with the session state.
type AddStepResponse struct {
	Step    models.Step     `json:"step"`
	Session SessionResponse `json:"session"`
}

// ConnectRequest adds the edge from -> to.
type ConnectRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to"   validate:"required"`
}

// AddVariableResponse returns the index of the blank variable row.
type AddVariableResponse struct {
	Index   int             `json:"index"`
	Session SessionResponse `json:"session"`
}

// IntegrityResponse lists the blocking integrity errors and the informational cycles.
type IntegrityResponse struct {
	Valid  bool                   `json:"valid"`
	Errors []graph.IntegrityError `json:"errors"`
	Cycles [][]string             `json:"cycles"`
}
