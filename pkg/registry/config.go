package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/blues/jsonata-go"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/robfig/cron/v3"
	"github.com/xeipuuv/gojsonschema"
)

// templatePattern matches values that are resolved at run time, e.g. "{{ vars.amount }}".
const templatePattern = `^\s*\{\{.*\}\}\s*$`

var templateRe = regexp.MustCompile(templatePattern)

// ConfigError is one problem in a step configuration.
type ConfigError struct {
	StepType string
	Field    string
	Message  string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s config: %s", e.StepType, e.Message)
	}

	return fmt.Sprintf("%s config field %q: %s", e.StepType, e.Field, e.Message)
}

// IsTemplate reports whether v is a templated expression resolved at run time.
func IsTemplate(v any) bool {
	s, ok := v.(string)

	return ok && templateRe.MatchString(s)
}

// ConfigSchema builds the JSON Schema of a step type's configuration.
// Every field is optional and number/boolean fields also accept templates.
func (r *Registry) ConfigSchema(stepType string) map[string]any {
	properties := make(map[string]any)

	for _, field := range r.Fields(stepType) {
		properties[field.Key] = fieldSchema(field)
	}

	return map[string]any{
		"$schema":    "http://json-schema.org/draft-07/schema#",
		"type":       "object",
		"title":      stepType,
		"properties": properties,
	}
}

func fieldSchema(field models.FieldSpec) map[string]any {
	template := map[string]any{"type": "string", "pattern": templatePattern}

	switch field.Kind {
	case models.FieldKindNumber:
		return map[string]any{
			"description": field.Label,
			"anyOf":       []any{map[string]any{"type": "number"}, template},
		}
	case models.FieldKindBoolean:
		return map[string]any{
			"description": field.Label,
			"anyOf":       []any{map[string]any{"type": "boolean"}, template},
		}
	case models.FieldKindSelect:
		options := make([]any, len(field.Options))
		for i, o := range field.Options {
			options[i] = o
		}

		return map[string]any{
			"description": field.Label,
			"anyOf":       []any{map[string]any{"type": "string", "enum": options}, template},
		}
	default:
		return map[string]any{
			"description": field.Label,
			"type":        "string",
		}
	}
}

// ValidateConfig checks a step configuration against its type's field spec.
// Unknown types and missing keys are valid; keys outside the spec are ignored.
func (r *Registry) ValidateConfig(stepType string, config map[string]any) []error {
	spec, ok := r.specs[stepType]
	if !ok || len(config) == 0 {
		return nil
	}

	var errs []error

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(r.ConfigSchema(stepType)),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return []error{&ConfigError{StepType: stepType, Message: err.Error()}}
	}

	if !result.Valid() {
		// anyOf failures come back once per branch; report one error per field.
		seen := make(map[string]struct{})

		for _, resultErr := range result.Errors() {
			key := resultErr.Field()
			if _, dup := seen[key]; dup {
				continue
			}

			seen[key] = struct{}{}

			errs = append(errs, &ConfigError{
				StepType: stepType,
				Field:    key,
				Message:  describe(spec, key, resultErr.Description()),
			})
		}
	}

	for _, field := range spec.Fields {
		value, present := config[field.Key]
		if !present || IsTemplate(value) {
			continue
		}

		expr, isString := value.(string)
		if !isString {
			continue
		}

		if err := checkFormat(field.Format, expr); err != nil {
			errs = append(errs, &ConfigError{StepType: stepType, Field: field.Key, Message: err.Error()})
		}
	}

	return errs
}

// checkFormat parses expressions of the formats that have a grammar. Empty
// values are left to the run time.
func checkFormat(format, expr string) error {
	if strings.TrimSpace(expr) == "" {
		return nil
	}

	switch format {
	case models.FieldFormatCron:
		_, err := cron.ParseStandard(expr)

		return err
	case models.FieldFormatJSONata:
		_, err := jsonata.Compile(expr)

		return err
	default:
		return nil
	}
}

func describe(spec models.StepTypeSpec, key, fallback string) string {
	field, ok := spec.Field(key)
	if !ok {
		return fallback
	}

	switch field.Kind {
	case models.FieldKindNumber:
		return "must be a number or a template"
	case models.FieldKindBoolean:
		return "must be a boolean or a template"
	case models.FieldKindSelect:
		return "must be one of: " + strings.Join(field.Options, ", ")
	default:
		return fallback
	}
}
