// Package redis provides Redis persistence for workflows and executions. Documents
// are stored as JSON strings; sorted sets index them by creation time.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/operion-studio/pkg/persistence"
	goredis "github.com/redis/go-redis/v9"
)

const defaultPrefix = "studio"

// Persistence implements persistence.Persistence on Redis.
type Persistence struct {
	client        goredis.UniversalClient
	logger        *slog.Logger
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
}

// NewPersistence connects to the Redis server at redisURL (redis:// or rediss://).
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return NewWithClient(client, logger, defaultPrefix), nil
}

// NewWithClient wraps an existing client. Keys are namespaced with prefix.
func NewWithClient(client goredis.UniversalClient, logger *slog.Logger, prefix string) *Persistence {
	k := keys{prefix: prefix}

	return &Persistence{
		client:        client,
		logger:        logger,
		workflowRepo:  &WorkflowRepository{client: client, keys: k},
		executionRepo: &ExecutionRepository{client: client, keys: k},
	}
}

// WorkflowRepository returns the workflow repository.
func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

// ExecutionRepository returns the execution repository.
func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

// HealthCheck pings the server.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

// Close closes the client.
func (p *Persistence) Close(_ context.Context) error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

type keys struct {
	prefix string
}

func (k keys) workflow(id string) string {
	return k.prefix + ":workflow:" + id
}

func (k keys) workflows() string {
	return k.prefix + ":workflows"
}

func (k keys) execution(id string) string {
	return k.prefix + ":execution:" + id
}

func (k keys) workflowExecutions(workflowID string) string {
	return k.prefix + ":workflow:" + workflowID + ":executions"
}
