package models

// FieldKind is the editor control used for a step configuration field.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindTextarea FieldKind = "textarea"
	FieldKindNumber   FieldKind = "number"
	FieldKindBoolean  FieldKind = "boolean"
	FieldKindSelect   FieldKind = "select"
)

// Known field formats checked by config validation.
const (
	FieldFormatCron    = "cron"
	FieldFormatURL     = "url"
	FieldFormatEmail   = "email"
	FieldFormatJSONata = "jsonata"
)

// FieldSpec describes one editable configuration field of a step type.
type FieldSpec struct {
	Key         string    `json:"key"                   validate:"required"`
	Label       string    `json:"label"                 validate:"required"`
	Kind        FieldKind `json:"kind"                  validate:"required,oneof=text textarea number boolean select"`
	Options     []string  `json:"options,omitempty"     validate:"required_if=Kind select"`
	Placeholder string    `json:"placeholder,omitempty"`
	Format      string    `json:"format,omitempty"`
}

// StepTypeSpec is the editable shape of one step kind.
type StepTypeSpec struct {
	Type        string      `json:"type"        validate:"required"`
	Label       string      `json:"label"       validate:"required"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Fields      []FieldSpec `json:"fields"      validate:"dive"`
}

// Field returns the field spec with the given key.
func (s StepTypeSpec) Field(key string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}

	return FieldSpec{}, false
}
