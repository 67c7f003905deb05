// Package config provides configuration loading for the studio services
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/dukex/operion-studio/pkg/models"
	"gopkg.in/yaml.v3"
)

// StepTypesFile represents the structure of a step-types.yaml file
type StepTypesFile struct {
	StepTypes []StepTypeConfig `yaml:"step_types"`
}

// StepTypeConfig represents one step type entry in the YAML file
type StepTypeConfig struct {
	Type        string        `yaml:"type"`
	Label       string        `yaml:"label"`
	Description string        `yaml:"description"`
	Category    string        `yaml:"category"`
	Fields      []FieldConfig `yaml:"fields"`
}

// FieldConfig represents a configuration field of a step type
type FieldConfig struct {
	Key         string   `yaml:"key"`
	Label       string   `yaml:"label"`
	Kind        string   `yaml:"kind"`
	Options     []string `yaml:"options"`
	Placeholder string   `yaml:"placeholder"`
	Format      string   `yaml:"format"`
}

// LoadStepTypes loads custom step types from a YAML file
func LoadStepTypes(filepath string) ([]models.StepTypeSpec, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read step types file %s: %w", filepath, err)
	}

	return ParseStepTypes(data)
}

// ParseStepTypes decodes and validates a step types document
func ParseStepTypes(data []byte) ([]models.StepTypeSpec, error) {
	var file StepTypesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	specs := make([]models.StepTypeSpec, len(file.StepTypes))

	for i, entry := range file.StepTypes {
		spec := models.StepTypeSpec{
			Type:        entry.Type,
			Label:       entry.Label,
			Description: entry.Description,
			Category:    entry.Category,
			Fields:      make([]models.FieldSpec, len(entry.Fields)),
		}

		if spec.Label == "" {
			spec.Label = entry.Type
		}

		for j, field := range entry.Fields {
			spec.Fields[j] = models.FieldSpec{
				Key:         field.Key,
				Label:       field.Label,
				Kind:        models.FieldKind(field.Kind),
				Options:     field.Options,
				Placeholder: field.Placeholder,
				Format:      field.Format,
			}
		}

		specs[i] = spec
	}

	if err := ValidateStepTypes(specs); err != nil {
		return nil, err
	}

	return specs, nil
}

// ValidateStepTypes checks the entries a registry would otherwise accept silently
func ValidateStepTypes(specs []models.StepTypeSpec) error {
	var errs []error

	for i, spec := range specs {
		if spec.Type == "" {
			errs = append(errs, fmt.Errorf("step_types[%d]: type is required", i))

			continue
		}

		for j, field := range spec.Fields {
			if field.Key == "" {
				errs = append(errs, fmt.Errorf("step_types[%d].fields[%d]: key is required", i, j))
			}

			if field.Label == "" {
				errs = append(errs, fmt.Errorf("step_types[%d].fields[%d]: label is required", i, j))
			}

			switch field.Kind {
			case models.FieldKindText, models.FieldKindTextarea, models.FieldKindNumber, models.FieldKindBoolean:
			case models.FieldKindSelect:
				if len(field.Options) == 0 {
					errs = append(errs, fmt.Errorf("step_types[%d].fields[%d]: select field requires 'options'", i, j))
				}
			default:
				errs = append(errs, fmt.Errorf("step_types[%d].fields[%d]: unknown field kind '%s'", i, j, field.Kind))
			}
		}
	}

	return errors.Join(errs...)
}
