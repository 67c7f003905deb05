package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/operion-studio/pkg/channels/gochannel"
	"github.com/dukex/operion-studio/pkg/channels/kafka"
	"github.com/dukex/operion-studio/pkg/eventbus"
)

// NewEventBus creates the event bus for provider. Kafka brokers are read from
// KAFKA_BROKERS.
func NewEventBus(provider string, logger *slog.Logger) (eventbus.EventBus, error) {
	wmLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "gochannel", "":
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	case "kafka":
		brokers := kafka.ParseBrokers(os.Getenv("KAFKA_BROKERS"))

		pub, sub, err := kafka.CreateChannel(wmLogger, brokers, "operion-studio")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
