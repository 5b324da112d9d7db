package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/busguard/cmd/app/commands"
	"github.com/allisson/busguard/internal/app"
	"github.com/allisson/busguard/internal/config"
)

func getAuthzCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "check-access",
			Usage: "Authorize a single bus message against the installed policy",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "peer-id",
					Required: true,
					Usage:    "Peer ID (UUID)",
				},
				&cli.StringFlag{
					Name:  "type",
					Value: "method_call",
					Usage: "Message type (method_call, signal, method_return, error)",
				},
				&cli.StringFlag{
					Name:     "path",
					Required: true,
					Usage:    "Object path (e.g., /control/door)",
				},
				&cli.StringFlag{
					Name:     "interface",
					Required: true,
					Usage:    "Interface name (e.g., net.example.Door)",
				},
				&cli.StringFlag{
					Name:  "member",
					Usage: "Member name (method or signal)",
				},
				&cli.BoolFlag{
					Name:  "outgoing",
					Value: false,
					Usage: "Check the message as outgoing instead of incoming",
				},
				&cli.BoolFlag{
					Name:  "authenticated",
					Value: true,
					Usage: "Whether the peer completed authentication",
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

				authzUC, err := container.AuthzUseCase()
				if err != nil {
					return err
				}

				return commands.RunCheckAccess(
					ctx,
					authzUC,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("peer-id"),
					cmd.String("type"),
					cmd.String("path"),
					cmd.String("interface"),
					cmd.String("member"),
					cmd.Bool("outgoing"),
					cmd.Bool("authenticated"),
					cmd.String("format"),
				)
			},
		},
	}
}
