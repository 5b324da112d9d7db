package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/busguard/cmd/app/commands"
	"github.com/allisson/busguard/internal/app"
	"github.com/allisson/busguard/internal/config"
)

func getPolicyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "install-policy",
			Usage: "Install a new policy version",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "policy",
					Aliases: []string{"p"},
					Usage:   "JSON policy document (version, acls)",
				},
				&cli.StringFlag{
					Name:    "file",
					Usage:   "Path to a JSON policy document",
					Aliases: []string{"i"},
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				policyUC, err := container.PolicyUseCase()
				if err != nil {
					return err
				}

				return commands.RunInstallPolicy(
					ctx,
					policyUC,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("policy"),
					cmd.String("file"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "show-policy",
			Usage: "Show the active policy",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				policyUC, err := container.PolicyUseCase()
				if err != nil {
					return err
				}

				return commands.RunShowPolicy(
					ctx,
					policyUC,
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
