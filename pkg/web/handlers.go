// Package web provides HTTP handlers and REST API endpoints for workflow editing.
package web

import (
	"net/http"
	"time"

	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/registry"
	"github.com/dukex/operion-studio/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService  *services.Workflow
	executionService *services.Execution
	validator        *validator.Validate
	registry         *registry.Registry
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	executionService *services.Execution,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		workflowService:  workflowService,
		executionService: executionService,
		validator:        validator,
		registry:         registry,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":   workflows,
		"total_count": len(workflows),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Studio API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Studio API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// PutWorkflow replaces the whole workflow document.
func (h *APIHandlers) PutWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req PutWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if req.Definition.Steps == nil {
		req.Definition.Steps = []models.Step{}
	}

	if req.Definition.Variables == nil {
		req.Definition.Variables = []models.VariableDefinition{}
	}

	workflow, err := h.workflowService.Put(c.Context(), id, services.PutWorkflowRequest{
		Name:        req.Name,
		Description: req.Description,
		Definition:  req.Definition,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	if err := h.workflowService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetVariables(c fiber.Ctx) error {
	id := c.Params("id")

	defs, err := h.workflowService.GetVariables(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(VariablesBody{Variables: defs})
}

func (h *APIHandlers) PutVariables(c fiber.Ctx) error {
	id := c.Params("id")

	var req VariablesBody
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if req.Variables == nil {
		req.Variables = []models.VariableDefinition{}
	}

	if err := h.workflowService.PutVariables(c.Context(), id, req.Variables); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LaunchExecution validates the submitted values against the stored schema and
// queues an execution.
func (h *APIHandlers) LaunchExecution(c fiber.Ctx) error {
	id := c.Params("id")

	var req LaunchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if req.Values == nil {
		req.Values = map[string]any{}
	}

	execution, err := h.executionService.Launch(c.Context(), id, req.Values)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(LaunchResponse{ID: execution.ID})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	execution, err := h.executionService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	id := c.Params("id")

	if _, err := h.workflowService.FetchByID(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	executions, err := h.executionService.ListByWorkflow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if executions == nil {
		executions = []*models.Execution{}
	}

	return c.JSON(fiber.Map{"executions": executions})
}

// GetStepTypes returns the palette ordered by type key.
func (h *APIHandlers) GetStepTypes(c fiber.Ctx) error {
	specs := h.registry.Types()

	out := make([]StepTypeResponse, len(specs))
	for i, spec := range specs {
		out[i] = StepTypeResponse{StepTypeSpec: spec, ConfigSchema: h.registry.ConfigSchema(spec.Type)}
	}

	return c.JSON(out)
}

func (h *APIHandlers) GetStepType(c fiber.Ctx) error {
	stepType := c.Params("type")

	spec, ok := h.registry.SpecFor(stepType)
	if !ok {
		return notFound(c, "step_type_not_found", graph.ErrUnknownStepType.Error()+": "+stepType)
	}

	return c.JSON(StepTypeResponse{StepTypeSpec: spec, ConfigSchema: h.registry.ConfigSchema(stepType)})
}
