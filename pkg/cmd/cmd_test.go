package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/operion-studio/pkg/channels/kafka"
	"github.com/dukex/operion-studio/pkg/persistence/file"
	"github.com/dukex/operion-studio/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersistenceProvider(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"file:///tmp/studio":         "file",
		"/var/lib/studio":            "file",
		"redis://localhost:6379/0":   "redis",
		"rediss://cache:6380":        "rediss",
		"postgres://u:p@db/studio":   "postgres",
		"postgresql://u:p@db/studio": "postgresql",
		"mysql://u:p@db/studio":      "file",
	}

	for url, expected := range tests {
		assert.Equal(t, expected, parsePersistenceProvider(url), url)
	}
}

func TestNewPersistence_File(t *testing.T) {
	t.Parallel()

	p, err := NewPersistence(t.Context(), slog.Default(), "file://"+t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, p)
	assert.NoError(t, p.HealthCheck(t.Context()))
}

func TestNewEventBus(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")

	bus, err := NewEventBus("gochannel", slog.Default())
	require.NoError(t, err)
	assert.NotEmpty(t, bus.GenerateID())
	assert.NoError(t, bus.Close())

	_, err = NewEventBus("kafka", slog.Default())
	assert.ErrorIs(t, err, kafka.ErrNoBrokers)

	_, err = NewEventBus("carrier-pigeon", slog.Default())
	assert.Error(t, err)
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(slog.Default(), "")
	require.NoError(t, err)
	assert.True(t, reg.Has("delay"))
}

func TestNewRegistry_CustomStepTypes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "step-types.yaml")
	require.NoError(t, os.WriteFile(path, []byte("step_types:\n  - type: noop\n    label: No-op\n"), 0o600))

	reg, err := NewRegistry(slog.Default(), path)
	require.NoError(t, err)
	assert.True(t, reg.Has("noop"))
	assert.True(t, reg.Has("delay"))

	dup := filepath.Join(t.TempDir(), "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("step_types:\n  - type: delay\n"), 0o600))

	_, err = NewRegistry(slog.Default(), dup)
	require.ErrorIs(t, err, registry.ErrDuplicateStepType)
}
