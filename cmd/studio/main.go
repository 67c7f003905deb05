// Command studio edits, checks and launches workflows from the terminal.
package main

import (
	"context"
	"os"

	"github.com/dukex/operion-studio/pkg/client"
	"github.com/dukex/operion-studio/pkg/cmd"
	"github.com/dukex/operion-studio/pkg/log"
	"github.com/dukex/operion-studio/pkg/registry"
	cli "github.com/urfave/cli/v3"
)

const defaultAPIURL = "http://localhost:9091"

func newApp() *cli.Command {
	return &cli.Command{
		Name:                  "studio",
		Usage:                 "Edit, check and launch workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the studio API",
				Value:   defaultAPIURL,
				Sources: cli.EnvVars("STUDIO_API_URL"),
			},
			&cli.StringFlag{
				Name:    "step-types",
				Usage:   "YAML file with custom step types added to the built-in catalog",
				Sources: cli.EnvVars("STEP_TYPES_FILE"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "warn",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			StepsCommand(),
			CheckCommand(),
			LaunchCommand(),
			ApplyCommand(),
		},
	}
}

func newClient(command *cli.Command) *client.Client {
	return client.New(command.String("api-url"))
}

func newRegistry(command *cli.Command) (*registry.Registry, error) {
	return cmd.NewRegistry(log.WithModule("studio"), command.String("step-types"))
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.WithModule("studio").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
