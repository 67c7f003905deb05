// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/dukex/operion-studio/pkg/config"
	"github.com/dukex/operion-studio/pkg/registry"
)

// NewRegistry creates the step type registry with the built-in catalog. When
// stepTypesFile is set, the custom step types it declares are registered too.
func NewRegistry(log *slog.Logger, stepTypesFile string) (*registry.Registry, error) {
	reg := registry.NewDefault(log)

	if stepTypesFile != "" {
		specs, err := config.LoadStepTypes(stepTypesFile)
		if err != nil {
			return nil, err
		}

		for _, spec := range specs {
			if err := reg.Register(spec); err != nil {
				return nil, fmt.Errorf("failed to register custom step type: %w", err)
			}
		}

		log.Info("Custom step types loaded", "file", stepTypesFile, "count", len(specs))
	}

	log.Info("Step type registry initialized", "step_types", len(reg.Types()))

	return reg, nil
}
