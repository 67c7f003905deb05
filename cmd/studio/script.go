package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukex/operion-studio/pkg/editor"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/dukex/operion-studio/pkg/variables"
)

var errUnknownOp = errors.New("unknown script operation")

// scriptOp is one edit of an apply script. Step ids may name a ref given to an
// earlier add_step in the same script.
type scriptOp struct {
	Op       string          `json:"op"`
	Ref      string          `json:"ref,omitempty"`
	Type     string          `json:"type,omitempty"`
	Position models.Position `json:"position"`
	Step     string          `json:"step,omitempty"`
	From     string          `json:"from,omitempty"`
	To       string          `json:"to,omitempty"`
	Name     string          `json:"name,omitempty"`
	Patch    json.RawMessage `json:"patch,omitempty"`
}

type scriptRunner struct {
	session *editor.Session
	refs    map[string]string
}

// applyScript runs ops in order and stops at the first failure. Edits go
// through the session history, so undo and redo behave as in the editor.
func applyScript(session *editor.Session, ops []scriptOp) error {
	r := &scriptRunner{session: session, refs: map[string]string{}}

	for i, op := range ops {
		if err := r.apply(op); err != nil {
			return fmt.Errorf("op #%d (%s): %w", i+1, op.Op, err)
		}
	}

	return nil
}

func (r *scriptRunner) resolve(id string) string {
	if stepID, ok := r.refs[id]; ok {
		return stepID
	}

	return id
}

func (r *scriptRunner) apply(op scriptOp) error {
	switch op.Op {
	case "add_step":
		step, err := r.session.AddStep(op.Type, op.Position)
		if err != nil {
			return err
		}

		if op.Ref != "" {
			r.refs[op.Ref] = step.ID
		}

		return nil
	case "update_step":
		var patch graph.StepPatch
		if err := decodePatch(op.Patch, &patch); err != nil {
			return err
		}

		if patch.OnError != nil && *patch.OnError != "" {
			target := r.resolve(*patch.OnError)
			patch.OnError = &target
		}

		return r.session.UpdateStep(r.resolve(op.Step), patch)
	case "connect":
		return r.session.Connect(r.resolve(op.From), r.resolve(op.To))
	case "disconnect":
		return r.session.Disconnect(r.resolve(op.From), r.resolve(op.To))
	case "remove_step":
		return r.session.RemoveStep(r.resolve(op.Step))
	case "add_variable":
		var patch variables.Patch
		if err := decodePatch(op.Patch, &patch); err != nil {
			return err
		}

		if op.Name != "" {
			name := op.Name
			patch.Name = &name
		}

		_, err := r.session.AddVariableWith(patch)

		return err
	case "update_variable":
		var patch variables.Patch
		if err := decodePatch(op.Patch, &patch); err != nil {
			return err
		}

		return r.session.UpdateVariable(op.Name, patch)
	case "remove_variable":
		return r.session.RemoveVariable(op.Name)
	case "undo":
		r.session.Undo()

		return nil
	case "redo":
		r.session.Redo()

		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownOp, op.Op)
	}
}

func decodePatch(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid patch: %w", err)
	}

	return nil
}
