package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukex/operion-studio/pkg/launch"
	"github.com/dukex/operion-studio/pkg/log"
	cli "github.com/urfave/cli/v3"
)

func LaunchCommand() *cli.Command {
	return &cli.Command{
		Name:  "launch",
		Usage: "Validate input values and start an execution",
		// --var values may hold JSON lists and free text. The setting is read
		// per command, so it lives on the command that owns the flag.
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "workflow",
				Aliases:  []string{"w"},
				Usage:    "Workflow ID",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:  "var",
				Usage: "Input value as name=value; repeat for more variables",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			values, err := parseVars(command.StringSlice("var"))
			if err != nil {
				return err
			}

			api := newClient(command)
			flow := launch.NewFlow(command.String("workflow"), api, api,
				launch.WithLogger(log.WithModule("launch")))

			if err := flow.Load(ctx); err != nil {
				return err
			}

			errs, err := flow.Submit(ctx, values)
			if err != nil {
				return err
			}

			w := command.Root().Writer

			if len(errs) > 0 {
				for _, e := range errs {
					_, _ = fmt.Fprintf(w, "%s: %s\n", e.Variable, e.Error)
				}

				return cli.Exit(fmt.Sprintf("%d value(s) rejected", len(errs)), 1)
			}

			_, _ = fmt.Fprintln(w, flow.ExecutionID())

			return nil
		},
	}
}

// parseVars turns name=value pairs into raw form values. Values stay strings;
// coercion happens in the launch flow.
func parseVars(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, expected name=value", pair)
		}

		values[name] = value
	}

	return values, nil
}
