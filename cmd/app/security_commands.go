package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/busguard/cmd/app/commands"
	"github.com/allisson/busguard/internal/app"
	"github.com/allisson/busguard/internal/config"
)

func getSecurityCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "claim",
			Usage: "Claim the application by installing trust anchors",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "claim",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "JSON claim document (trust_anchors, auth_suite, passcode)",
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

				securityUC, err := container.SecurityUseCase()
				if err != nil {
					return err
				}

				return commands.RunClaim(
					ctx,
					securityUC,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("claim"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "reset",
			Usage: "Remove trust anchors and installed policies",
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

				securityUC, err := container.SecurityUseCase()
				if err != nil {
					return err
				}

				return commands.RunReset(
					ctx,
					securityUC,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "set-claim-passcode",
			Usage: "Store the passcode required for password-based claiming",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "passcode",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Plaintext passcode (only the hash is stored)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				securityUC, err := container.SecurityUseCase()
				if err != nil {
					return err
				}

				return commands.RunSetClaimPasscode(
					ctx,
					securityUC,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("passcode"),
				)
			},
		},
		{
			Name:  "show-application",
			Usage: "Show the application security posture",
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

				securityUC, err := container.SecurityUseCase()
				if err != nil {
					return err
				}

				return commands.RunShowApplication(
					ctx,
					securityUC,
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
