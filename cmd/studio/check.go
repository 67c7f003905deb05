package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/models"
	cli "github.com/urfave/cli/v3"
)

func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Validate a workflow definition file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Definition JSON, bare or wrapped in a workflow document",
				Required: true,
			},
		},
		Action: func(_ context.Context, command *cli.Command) error {
			def, err := readDefinition(command.String("file"))
			if err != nil {
				return err
			}

			reg, err := newRegistry(command)
			if err != nil {
				return err
			}

			model := graph.NewModel(reg)
			w := command.Root().Writer

			errs := model.Validate(def)
			for _, e := range errs {
				_, _ = fmt.Fprintf(w, "error\t%s\t%s\n", e.Kind, e.Message)
			}

			for _, cycle := range graph.FindCycles(def) {
				_, _ = fmt.Fprintf(w, "cycle\t%s\n", strings.Join(cycle, " -> "))
			}

			if len(errs) > 0 {
				return cli.Exit(fmt.Sprintf("%d integrity error(s)", len(errs)), 1)
			}

			_, _ = fmt.Fprintf(w, "ok\t%d steps, %d edges, %d variables\n",
				def.StepCount(), def.EdgeCount(), len(def.Variables))

			return nil
		},
	}
}

func readDefinition(path string) (models.WorkflowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.WorkflowDefinition{}, fmt.Errorf("failed to read definition: %w", err)
	}

	var doc struct {
		Definition *models.WorkflowDefinition `json:"definition"`
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return models.WorkflowDefinition{}, fmt.Errorf("failed to parse definition: %w", err)
	}

	def := models.NewWorkflowDefinition()

	if doc.Definition != nil {
		def = *doc.Definition
	} else {
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(&def); err != nil {
			return models.WorkflowDefinition{}, fmt.Errorf("failed to parse definition: %w", err)
		}
	}

	if def.Steps == nil {
		def.Steps = []models.Step{}
	}

	if def.Variables == nil {
		def.Variables = []models.VariableDefinition{}
	}

	return def, nil
}
