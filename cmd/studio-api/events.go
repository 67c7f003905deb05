package main

import (
	"context"
	"log/slog"

	"github.com/dukex/operion-studio/pkg/eventbus"
	"github.com/dukex/operion-studio/pkg/events"
)

// subscribeEventLog logs every studio event the bus delivers.
func subscribeEventLog(ctx context.Context, bus eventbus.EventBus, logger *slog.Logger) error {
	types := []events.EventType{
		events.WorkflowSavedEvent,
		events.WorkflowDeletedEvent,
		events.WorkflowVariablesUpdatedEvent,
		events.ExecutionRequestedEvent,
	}

	for _, eventType := range types {
		err := bus.Handle(eventType, func(ctx context.Context, event any) error {
			logger.DebugContext(ctx, "Event received", "event_type", eventType, "event", event)

			return nil
		})
		if err != nil {
			return err
		}
	}

	return bus.Subscribe(ctx)
}
