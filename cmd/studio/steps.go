package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/operion-studio/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func StepsCommand() *cli.Command {
	return &cli.Command{
		Name:  "steps",
		Usage: "List the step types of the palette",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "remote",
				Usage: "Ask the API instead of the built-in catalog",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			var specs []models.StepTypeSpec

			if command.Bool("remote") {
				remote, err := newClient(command).StepTypes(ctx)
				if err != nil {
					return fmt.Errorf("failed to fetch step types: %w", err)
				}

				specs = remote
			} else {
				reg, err := newRegistry(command)
				if err != nil {
					return err
				}

				specs = reg.Types()
			}

			w := command.Root().Writer

			for _, spec := range specs {
				keys := make([]string, len(spec.Fields))
				for i, f := range spec.Fields {
					keys[i] = f.Key
				}

				_, _ = fmt.Fprintf(w, "%-14s %-16s %s\n", spec.Type, spec.Label, strings.Join(keys, ", "))
			}

			return nil
		},
	}
}
