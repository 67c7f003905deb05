package web

import (
	"github.com/dukex/operion-studio/pkg/editor"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/persistence"
	"github.com/dukex/operion-studio/pkg/services"
	"github.com/dukex/operion-studio/pkg/variables"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// SessionHandlers expose headless editing sessions. Every edit goes through the
// session's graph model and history, so undo and redo behave as in the editor.
type SessionHandlers struct {
	manager         *editor.Manager
	workflowService *services.Workflow
	validator       *validator.Validate
}

func NewSessionHandlers(
	manager *editor.Manager,
	workflowService *services.Workflow,
	validator *validator.Validate,
) *SessionHandlers {
	return &SessionHandlers{
		manager:         manager,
		workflowService: workflowService,
		validator:       validator,
	}
}

// Register mounts the session routes on a router.
func (h *SessionHandlers) Register(r fiber.Router) {
	r.Post("/", h.OpenSession)
	r.Get("/:sid", h.GetSession)
	r.Delete("/:sid", h.DiscardSession)
	r.Post("/:sid/steps", h.AddStep)
	r.Patch("/:sid/steps/:stepId", h.UpdateStep)
	r.Delete("/:sid/steps/:stepId", h.RemoveStep)
	r.Post("/:sid/edges", h.Connect)
	r.Delete("/:sid/edges/:from/:to", h.Disconnect)
	r.Post("/:sid/variables", h.AddVariable)
	r.Patch("/:sid/variables/:name", h.UpdateVariable)
	r.Delete("/:sid/variables/:name", h.RemoveVariable)
	r.Post("/:sid/undo", h.Undo)
	r.Post("/:sid/redo", h.Redo)
	r.Post("/:sid/save", h.Save)
	r.Get("/:sid/integrity", h.Integrity)
}

func (h *SessionHandlers) OpenSession(c fiber.Ctx) error {
	var req OpenSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	def := models.NewWorkflowDefinition()

	workflow, err := h.workflowService.FetchByID(c.Context(), req.WorkflowID)

	switch {
	case err == nil:
		def = workflow.Definition
	case persistence.IsWorkflowNotFound(err):
	default:
		return handleServiceError(c, err)
	}

	id := h.manager.Open(req.WorkflowID, def)

	var resp SessionResponse

	err = h.manager.With(id, func(s *editor.Session) error {
		resp = NewSessionResponse(id, s)

		return nil
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *SessionHandlers) GetSession(c fiber.Ctx) error {
	return h.edit(c, fiber.StatusOK, func(*editor.Session) error { return nil })
}

func (h *SessionHandlers) DiscardSession(c fiber.Ctx) error {
	if err := h.manager.Discard(c.Params("sid")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SessionHandlers) AddStep(c fiber.Ctx) error {
	var req AddStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	sid := c.Params("sid")

	var resp AddStepResponse

	err := h.manager.With(sid, func(s *editor.Session) error {
		step, err := s.AddStep(req.Type, req.Position)
		if err != nil {
			return err
		}

		resp = AddStepResponse{Step: step, Session: NewSessionResponse(sid, s)}

		return nil
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *SessionHandlers) UpdateStep(c fiber.Ctx) error {
	var patch graph.StepPatch
	if err := c.Bind().JSON(&patch); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	stepID := c.Params("stepId")

	return h.edit(c, fiber.StatusOK, func(s *editor.Session) error {
		return s.UpdateStep(stepID, patch)
	})
}

func (h *SessionHandlers) RemoveStep(c fiber.Ctx) error {
	stepID := c.Params("stepId")

	return h.edit(c, fiber.StatusOK, func(s *editor.Session) error {
		return s.RemoveStep(stepID)
	})
}

func (h *SessionHandlers) Connect(c fiber.Ctx) error {
	var req ConnectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	return h.edit(c, fiber.StatusOK, func(s *editor.Session) error {
		return s.Connect(req.From, req.To)
	})
}

func (h *SessionHandlers) Disconnect(c fiber.Ctx) error {
	from, to := c.Params("from"), c.Params("to")

	return h.edit(c, fiber.StatusOK, func(s *editor.Session) error {
		return s.Disconnect(from, to)
	})
}

// AddVariable appends a blank row. An optional patch body fills it in as part
// of the same request.
func (h *SessionHandlers) AddVariable(c fiber.Ctx) error {
	var patch variables.Patch

	hasPatch := len(c.Body()) > 0
	if hasPatch {
		if err := c.Bind().JSON(&patch); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	sid := c.Params("sid")

	var resp AddVariableResponse

	err := h.manager.With(sid, func(s *editor.Session) error {
		idx := 0

		if hasPatch {
			var err error
			if idx, err = s.AddVariableWith(patch); err != nil {
				return err
			}
		} else {
			idx = s.AddVariable()
		}

		resp = AddVariableResponse{Index: idx, Session: NewSessionResponse(sid, s)}

		return nil
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *SessionHandlers) UpdateVariable(c fiber.Ctx) error {
	var patch variables.Patch
	if err := c.Bind().JSON(&patch); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	name := c.Params("name")

	return h.edit(c, fiber.StatusOK, func(s *editor.Session) error {
		return s.UpdateVariable(name, patch)
	})
}

func (h *SessionHandlers) RemoveVariable(c fiber.Ctx) error {
	name := c.Params("name")

	return h.edit(c, fiber.StatusOK, func(s *editor.Session) error {
		return s.RemoveVariable(name)
	})
}

func (h *SessionHandlers) Undo(c fiber.Ctx) error {
	return h.edit(c, fiber.StatusOK, func(s *editor.Session) error {
		s.Undo()

		return nil
	})
}

func (h *SessionHandlers) Redo(c fiber.Ctx) error {
	return h.edit(c, fiber.StatusOK, func(s *editor.Session) error {
		s.Redo()

		return nil
	})
}

// Save runs the local checks and persists through the workflow service. The
// session lock is held for the whole save.
func (h *SessionHandlers) Save(c fiber.Ctx) error {
	return h.edit(c, fiber.StatusOK, func(s *editor.Session) error {
		return s.Save(c.Context(), h.workflowService)
	})
}

func (h *SessionHandlers) Integrity(c fiber.Ctx) error {
	var resp IntegrityResponse

	err := h.manager.With(c.Params("sid"), func(s *editor.Session) error {
		errs := s.ValidateIntegrity()
		if errs == nil {
			errs = []graph.IntegrityError{}
		}

		cycles := graph.FindCycles(s.Definition())
		if cycles == nil {
			cycles = [][]string{}
		}

		resp = IntegrityResponse{Valid: len(errs) == 0, Errors: errs, Cycles: cycles}

		return nil
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// edit runs fn under the session lock and answers with the resulting state.
func (h *SessionHandlers) edit(c fiber.Ctx, status int, fn func(*editor.Session) error) error {
	sid := c.Params("sid")

	var resp SessionResponse

	err := h.manager.With(sid, func(s *editor.Session) error {
		if err := fn(s); err != nil {
			return err
		}

		resp = NewSessionResponse(sid, s)

		return nil
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(status).JSON(resp)
}
