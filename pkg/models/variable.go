package models

// VariableType is the declared type of a workflow input variable.
type VariableType string

const (
	VariableTypeString  VariableType = "string"
	VariableTypeNumber  VariableType = "number"
	VariableTypeBoolean VariableType = "boolean"
	VariableTypeJSON    VariableType = "json"
	VariableTypeList    VariableType = "list"
	VariableTypeSecret  VariableType = "secret" // Only affects input masking
)

// VariableScope tells where a variable's value is resolved from.
type VariableScope string

const (
	VariableScopeWorkflow  VariableScope = "workflow"
	VariableScopeExecution VariableScope = "execution"
	VariableScopeGlobal    VariableScope = "global"
)

// GeneralErrorKey is the pseudo variable name used for errors that belong to no field.
const GeneralErrorKey = "_general"

// VariableDefinition declares one typed workflow input.
type VariableDefinition struct {
	Name         string        `json:"name"                    validate:"required"`
	Type         VariableType  `json:"type"                    validate:"required,oneof=string number boolean json list secret"`
	DefaultValue any           `json:"default_value,omitempty"`
	Description  string        `json:"description"`
	Required     bool          `json:"required"`
	Sensitive    bool          `json:"sensitive"`
	Scope        VariableScope `json:"scope"                   validate:"omitempty,oneof=workflow execution global"`
}

// HasDefault reports whether the variable declares a default value.
func (v VariableDefinition) HasDefault() bool {
	return v.DefaultValue != nil
}

// Clone returns a deep copy of the definition.
func (v VariableDefinition) Clone() VariableDefinition {
	out := v
	out.DefaultValue = CloneValue(v.DefaultValue)

	return out
}

// VariableError is one per-field problem found while validating submitted values.
type VariableError struct {
	Variable string `json:"variable"`
	Error    string `json:"error"`
}

// NewGeneralError builds the single error entry used for failures not tied to a variable.
func NewGeneralError(message string) VariableError {
	return VariableError{Variable: GeneralErrorKey, Error: message}
}
