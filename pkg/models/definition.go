package models

// WorkflowDefinition is the full editable graph of a workflow plus its declared inputs.
type WorkflowDefinition struct {
	Steps     []Step               `json:"steps"     validate:"dive"`
	Variables []VariableDefinition `json:"variables" validate:"dive"`
}

// NewWorkflowDefinition returns an empty definition.
func NewWorkflowDefinition() WorkflowDefinition {
	return WorkflowDefinition{
		Steps:     []Step{},
		Variables: []VariableDefinition{},
	}
}

// Clone returns a deep copy that shares no mutable state with d.
func (d WorkflowDefinition) Clone() WorkflowDefinition {
	out := WorkflowDefinition{
		Steps:     make([]Step, len(d.Steps)),
		Variables: make([]VariableDefinition, len(d.Variables)),
	}

	for i, s := range d.Steps {
		out.Steps[i] = s.Clone()
	}

	for i, v := range d.Variables {
		out.Variables[i] = v.Clone()
	}

	return out
}

// StepIndex returns the position of the step with the given id, or -1.
func (d WorkflowDefinition) StepIndex(id string) int {
	for i := range d.Steps {
		if d.Steps[i].ID == id {
			return i
		}
	}

	return -1
}

// StepByID returns the step with the given id.
func (d WorkflowDefinition) StepByID(id string) (Step, bool) {
	i := d.StepIndex(id)
	if i < 0 {
		return Step{}, false
	}

	return d.Steps[i], true
}

// HasStep reports whether a step with the given id exists.
func (d WorkflowDefinition) HasStep(id string) bool {
	return d.StepIndex(id) >= 0
}

// VariableByName returns the variable declared with the given name.
func (d WorkflowDefinition) VariableByName(name string) (VariableDefinition, bool) {
	for _, v := range d.Variables {
		if v.Name == name {
			return v, true
		}
	}

	return VariableDefinition{}, false
}

// StepCount is the number of steps ("N steps").
func (d WorkflowDefinition) StepCount() int {
	return len(d.Steps)
}

// EdgeCount is the total number of entries across all next lists ("M edges").
// On-error links are not edges.
func (d WorkflowDefinition) EdgeCount() int {
	edges := 0
	for _, s := range d.Steps {
		edges += len(s.Next)
	}

	return edges
}
