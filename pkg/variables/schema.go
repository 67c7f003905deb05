// Package variables implements the workflow variable schema: local-first editing,
// pre-save checks and the runtime validation that gates every execution launch.
package variables

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dukex/operion-studio/pkg/models"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsValidName reports whether name is a valid variable identifier.
func IsValidName(name string) bool {
	return identifierRe.MatchString(name)
}

// Store persists a variable schema remotely.
type Store interface {
	SaveVariables(ctx context.Context, workflowID string, defs []models.VariableDefinition) error
}

// Patch lists the fields an update may change. Nil fields are left as they are.
type Patch struct {
	Name         *string               `json:"name,omitempty"`
	Type         *models.VariableType  `json:"type,omitempty"`
	DefaultValue any                   `json:"default_value,omitempty"`
	ClearDefault bool                  `json:"clear_default,omitempty"`
	Description  *string               `json:"description,omitempty"`
	Required     *bool                 `json:"required,omitempty"`
	Sensitive    *bool                 `json:"sensitive,omitempty"`
	Scope        *models.VariableScope `json:"scope,omitempty"`
}

func (p Patch) apply(v models.VariableDefinition) models.VariableDefinition {
	if p.Name != nil {
		v.Name = *p.Name
	}

	if p.Type != nil {
		v.Type = *p.Type
	}

	if p.ClearDefault {
		v.DefaultValue = nil
	} else if p.DefaultValue != nil {
		v.DefaultValue = models.CloneValue(p.DefaultValue)
	}

	if p.Description != nil {
		v.Description = *p.Description
	}

	if p.Required != nil {
		v.Required = *p.Required
	}

	if p.Sensitive != nil {
		v.Sensitive = *p.Sensitive
	}

	if p.Scope != nil {
		v.Scope = *p.Scope
	}

	return v
}

// Schema is the local, editable set of variable definitions of one workflow.
// Edits only mark it dirty; nothing is sent until Save.
type Schema struct {
	defs  []models.VariableDefinition
	dirty bool
}

// NewSchema wraps a loaded set of definitions. A freshly loaded schema is clean.
func NewSchema(defs []models.VariableDefinition) *Schema {
	s := &Schema{}
	s.defs = cloneDefinitions(defs)

	return s
}

// Definitions returns a copy of the current definitions.
func (s *Schema) Definitions() []models.VariableDefinition {
	return cloneDefinitions(s.defs)
}

// Dirty reports whether there are unsaved edits.
func (s *Schema) Dirty() bool {
	return s.dirty
}

// MarkClean clears the dirty flag after a successful save.
func (s *Schema) MarkClean() {
	s.dirty = false
}

// Add appends a blank string variable and returns its index.
func (s *Schema) Add() int {
	s.defs = append(s.defs, models.VariableDefinition{
		Type:      models.VariableTypeString,
		Required:  false,
		Sensitive: false,
		Scope:     models.VariableScopeWorkflow,
	})
	s.dirty = true

	return len(s.defs) - 1
}

// Update applies a patch to the first variable named name.
func (s *Schema) Update(name string, patch Patch) error {
	idx := s.indexOf(name)
	if idx < 0 {
		return fmt.Errorf("update %q: %w", name, ErrVariableNotFound)
	}

	return s.UpdateAt(idx, patch)
}

// UpdateAt applies a patch to the variable at index i. Rows whose name is still
// blank can only be addressed this way.
func (s *Schema) UpdateAt(i int, patch Patch) error {
	if i < 0 || i >= len(s.defs) {
		return fmt.Errorf("update #%d: %w", i, ErrVariableNotFound)
	}

	s.defs[i] = patch.apply(s.defs[i])
	s.dirty = true

	return nil
}

// Remove deletes the first variable named name.
func (s *Schema) Remove(name string) error {
	idx := s.indexOf(name)
	if idx < 0 {
		return fmt.Errorf("remove %q: %w", name, ErrVariableNotFound)
	}

	return s.RemoveAt(idx)
}

// RemoveAt deletes the variable at index i.
func (s *Schema) RemoveAt(i int) error {
	if i < 0 || i >= len(s.defs) {
		return fmt.Errorf("remove #%d: %w", i, ErrVariableNotFound)
	}

	s.defs = append(s.defs[:i], s.defs[i+1:]...)
	s.dirty = true

	return nil
}

// Replace swaps the whole set, e.g. after undo or redo.
func (s *Schema) Replace(defs []models.VariableDefinition) {
	s.defs = cloneDefinitions(defs)
	s.dirty = true
}

// Save runs the pre-save checks and, only when they pass, persists the schema.
// A failed check never reaches the store.
func (s *Schema) Save(ctx context.Context, workflowID string, store Store) error {
	if err := Preflight(s.defs); err != nil {
		return err
	}

	if err := store.SaveVariables(ctx, workflowID, s.Definitions()); err != nil {
		return fmt.Errorf("failed to save variables: %w", err)
	}

	s.MarkClean()

	return nil
}

func (s *Schema) indexOf(name string) int {
	for i, v := range s.defs {
		if v.Name == name {
			return i
		}
	}

	return -1
}

// Preflight returns the first schema error, checking in order: empty names,
// name collisions, then names that are not valid identifiers.
func Preflight(defs []models.VariableDefinition) error {
	for i, v := range defs {
		if v.Name == "" {
			return &SchemaError{Index: i, Err: ErrEmptyName}
		}
	}

	seen := make(map[string]struct{}, len(defs))
	for i, v := range defs {
		if _, dup := seen[v.Name]; dup {
			return &SchemaError{Index: i, Name: v.Name, Err: ErrDuplicateName}
		}

		seen[v.Name] = struct{}{}
	}

	for i, v := range defs {
		if !IsValidName(v.Name) {
			return &SchemaError{Index: i, Name: v.Name, Err: ErrInvalidName}
		}
	}

	return nil
}

func cloneDefinitions(defs []models.VariableDefinition) []models.VariableDefinition {
	out := make([]models.VariableDefinition, len(defs))
	for i, v := range defs {
		out[i] = v.Clone()
	}

	return out
}
