// Package history keeps a bounded, linear undo/redo stack of workflow definition snapshots.
package history

import "github.com/dukex/operion-studio/pkg/models"

// DefaultMaxHistory is the number of snapshots kept when no limit is configured.
const DefaultMaxHistory = 50

// History is a linear stack of snapshots with a single pointer at the current one.
// Snapshots are stored and returned as clones, so callers can never change a
// recorded state.
type History struct {
	snapshots []models.WorkflowDefinition
	pointer   int
	max       int
}

// Option configures a History.
type Option func(*History)

// WithMaxHistory bounds the number of stored snapshots. Values below 1 are ignored.
func WithMaxHistory(limit int) Option {
	return func(h *History) {
		if limit >= 1 {
			h.max = limit
		}
	}
}

// New creates a history whose index 0 is the initial snapshot. The initial
// snapshot is never itself undoable.
func New(initial models.WorkflowDefinition, opts ...Option) *History {
	h := &History{
		snapshots: []models.WorkflowDefinition{initial.Clone()},
		max:       DefaultMaxHistory,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Record stores a committed edit. Any redo branch after the pointer is discarded
// first; when the stack exceeds the limit the oldest snapshots are dropped and the
// pointer still addresses the recorded state.
func (h *History) Record(state models.WorkflowDefinition) {
	h.snapshots = append(h.snapshots[:h.pointer+1], state.Clone())
	h.pointer = len(h.snapshots) - 1

	if overflow := len(h.snapshots) - h.max; overflow > 0 {
		h.snapshots = append([]models.WorkflowDefinition(nil), h.snapshots[overflow:]...)
		h.pointer -= overflow
	}
}

// Undo moves the pointer back one snapshot and returns it. At index 0 it returns
// the current snapshot unchanged.
func (h *History) Undo() models.WorkflowDefinition {
	if h.pointer > 0 {
		h.pointer--
	}

	return h.Current()
}

// Redo moves the pointer forward one snapshot and returns it. At the end it
// returns the current snapshot unchanged.
func (h *History) Redo() models.WorkflowDefinition {
	if h.pointer < len(h.snapshots)-1 {
		h.pointer++
	}

	return h.Current()
}

// Current returns the snapshot at the pointer.
func (h *History) Current() models.WorkflowDefinition {
	return h.snapshots[h.pointer].Clone()
}

// CanUndo reports whether Undo would move the pointer.
func (h *History) CanUndo() bool {
	return h.pointer > 0
}

// CanRedo reports whether Redo would move the pointer.
func (h *History) CanRedo() bool {
	return h.pointer < len(h.snapshots)-1
}

// Len is the number of stored snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Pointer is the index of the current snapshot.
func (h *History) Pointer() int {
	return h.pointer
}
