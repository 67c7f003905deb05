// Package main provides the Studio API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/operion-studio/pkg/editor"
	"github.com/dukex/operion-studio/pkg/eventbus"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/otelhelper"
	"github.com/dukex/operion-studio/pkg/persistence"
	"github.com/dukex/operion-studio/pkg/registry"
	"github.com/dukex/operion-studio/pkg/services"
	"github.com/dukex/operion-studio/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

type APIOption func(*API)

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	opts ...APIOption,
) *API {
	a := &API{
		persistence: persistence,
		logger:      logger,
		registry:    registry,
		eventBus:    eventBus,
		tracer:      otelhelper.NoopTracer(),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

func (a *API) App() *fiber.App {
	model := graph.NewModel(a.registry)

	workflowService := services.NewWorkflow(a.persistence, model, a.eventBus, a.tracer, a.logger)
	executionService := services.NewExecution(a.persistence, a.eventBus, a.tracer, a.logger)

	handlers := web.NewAPIHandlers(workflowService, executionService, a.validate, a.registry)
	sessions := web.NewSessionHandlers(
		editor.NewManager(model, a.logger, editor.WithLogger(a.logger)),
		workflowService,
		a.validate,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Operion Studio API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.PutWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Get("/:id/variables", handlers.GetVariables)
	w.Put("/:id/variables", handlers.PutVariables)
	w.Post("/:id/executions", handlers.LaunchExecution)
	w.Get("/:id/executions", handlers.GetWorkflowExecutions)

	app.Get("/executions/:id", handlers.GetExecution)

	st := app.Group("/step-types")
	st.Get("/", handlers.GetStepTypes)
	st.Get("/:type", handlers.GetStepType)

	sessions.Register(app.Group("/sessions"))

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
