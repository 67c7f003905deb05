package web

import (
	"errors"

	"github.com/dukex/operion-studio/pkg/editor"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/persistence"
	"github.com/dukex/operion-studio/pkg/services"
	"github.com/dukex/operion-studio/pkg/variables"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// Problem is an RFC 7807 body extended with the per-variable and per-item
// errors the editor shows next to fields.
type Problem struct {
	*problems.Problem

	Errors  []models.VariableError `json:"errors,omitempty"`
	Details []string               `json:"details,omitempty"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, kind, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(kind).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service, editor and
// persistence errors.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case services.IsValidationError(err):
		problem := Problem{
			Problem: problems.NewStatusProblem(400).
				WithInstance(c.Path()).
				WithType("validation_error").
				WithDetail(err.Error()),
		}

		if serviceErr, ok := services.AsServiceError(err); ok {
			problem.Errors = serviceErr.Variables
			problem.Details = serviceErr.Details
		}

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case variables.IsSchemaError(err),
		errors.Is(err, graph.ErrUnknownStepType),
		errors.Is(err, graph.ErrInvalidRetryPolicy):
		return badRequest(c, err.Error())

	case errors.Is(err, editor.ErrIntegrity):
		problem := problems.NewStatusProblem(422).
			WithInstance(c.Path()).
			WithType("integrity_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)

	case persistence.IsWorkflowNotFound(err):
		return notFound(c, "workflow_not_found", "workflow not found")

	case persistence.IsExecutionNotFound(err):
		return notFound(c, "execution_not_found", "execution not found")

	case errors.Is(err, editor.ErrSessionNotFound):
		return notFound(c, "session_not_found", "editing session not found")

	case graph.IsStepNotFound(err):
		return notFound(c, "step_not_found", err.Error())

	case errors.Is(err, variables.ErrVariableNotFound):
		return notFound(c, "variable_not_found", err.Error())

	default:
		return internalError(c, err)
	}
}
