package services_test

import (
	"log/slog"
	"testing"

	"github.com/dukex/operion-studio/pkg/eventbus"
	"github.com/dukex/operion-studio/pkg/events"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/mocks"
	"github.com/dukex/operion-studio/pkg/otelhelper"
	"github.com/dukex/operion-studio/pkg/persistence/file"
	"github.com/dukex/operion-studio/pkg/registry"
	"github.com/dukex/operion-studio/pkg/services"
	"github.com/stretchr/testify/mock"
)

type fixture struct {
	persistence *file.Persistence
	bus         *mocks.MockEventBus
	workflows   *services.Workflow
	executions  *services.Execution
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	bus := &mocks.MockEventBus{}
	bus.On("GenerateID").Return("evt-1").Maybe()

	logger := slog.Default()
	model := graph.NewModel(registry.NewDefault(logger))
	tracer := otelhelper.NoopTracer()

	return &fixture{
		persistence: p,
		bus:         bus,
		workflows:   services.NewWorkflow(p, model, bus, tracer, logger),
		executions:  services.NewExecution(p, bus, tracer, logger),
	}
}

func (f *fixture) expectPublish(eventType events.EventType) *mock.Call {
	return f.bus.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(e eventbus.Event) bool {
		return e.GetType() == eventType
	}))
}
