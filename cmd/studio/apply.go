package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dukex/operion-studio/pkg/editor"
	"github.com/dukex/operion-studio/pkg/graph"
	"github.com/dukex/operion-studio/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func ApplyCommand() *cli.Command {
	return &cli.Command{
		Name:  "apply",
		Usage: "Apply an edit script to a workflow and save it",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "workflow",
				Aliases:  []string{"w"},
				Usage:    "Workflow ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "script",
				Aliases:  []string{"s"},
				Usage:    "JSON array of edit operations",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Apply and check the script without saving",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			ops, err := readScript(command.String("script"))
			if err != nil {
				return err
			}

			logger := log.WithModule("studio")
			workflowID := command.String("workflow")
			api := newClient(command)

			def, err := api.FetchWorkflow(ctx, workflowID)
			if err != nil {
				return fmt.Errorf("failed to load workflow: %w", err)
			}

			reg, err := newRegistry(command)
			if err != nil {
				return err
			}

			model := graph.NewModel(reg)
			session := editor.NewSession(workflowID, def, model, editor.WithLogger(logger))

			if err := applyScript(session, ops); err != nil {
				return err
			}

			steps, edges := session.Counts()
			w := command.Root().Writer

			if command.Bool("dry-run") {
				if errs := session.ValidateIntegrity(); len(errs) > 0 {
					for _, e := range errs {
						_, _ = fmt.Fprintf(w, "error\t%s\t%s\n", e.Kind, e.Message)
					}

					return cli.Exit(fmt.Sprintf("%d integrity error(s)", len(errs)), 1)
				}

				_, _ = fmt.Fprintf(w, "dry run\t%d steps, %d edges\n", steps, edges)

				return nil
			}

			if err := session.Save(ctx, api); err != nil {
				return fmt.Errorf("failed to save workflow: %w", err)
			}

			_, _ = fmt.Fprintf(w, "saved\t%d steps, %d edges\n", steps, edges)

			return nil
		},
	}
}

func readScript(path string) ([]scriptOp, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	var ops []scriptOp
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	return ops, nil
}
