package editor

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or discarded session ids.
var ErrSessionNotFound = errors.New("editing session not found")

type lockedSession struct {
	mu      sync.Mutex
	session *Session
}

// Manager keeps the open editing sessions of an HTTP host. Each session is
// guarded by its own lock so edits on different sessions never contend.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*lockedSession
	model    *graph.Model
	logger   *slog.Logger
	opts     []Option
}

// NewManager creates an empty session manager.
func NewManager(model *graph.Model, logger *slog.Logger, opts ...Option) *Manager {
	return &Manager{
		sessions: make(map[string]*lockedSession),
		model:    model,
		logger:   logger,
		opts:     append([]Option{WithLogger(logger)}, opts...),
	}
}

// Open starts a session on the given definition and returns its id.
func (m *Manager) Open(workflowID string, def models.WorkflowDefinition) string {
	id := uuid.NewString()
	session := NewSession(workflowID, def, m.model, m.opts...)

	m.mu.Lock()
	m.sessions[id] = &lockedSession{session: session}
	m.mu.Unlock()

	m.logger.Info("Editing session opened", "session_id", id, "workflow_id", workflowID)

	return id
}

// With runs fn while holding the session lock.
func (m *Manager) With(id string, fn func(*Session) error) error {
	m.mu.RLock()
	ls, ok := m.sessions[id]
	m.mu.RUnlock()

	if !ok {
		return ErrSessionNotFound
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.session == nil {
		return ErrSessionNotFound
	}

	return fn(ls.session)
}

// Discard closes a session and drops its model and history.
func (m *Manager) Discard(id string) error {
	m.mu.Lock()
	ls, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	ls.mu.Lock()
	ls.session = nil
	ls.mu.Unlock()

	m.logger.Info("Editing session discarded", "session_id", id)

	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.sessions)
}
