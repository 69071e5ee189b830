package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sputnik-dev/sputnik/internal/config"
	"github.com/sputnik-dev/sputnik/pkg/likes"
	"github.com/sputnik-dev/sputnik/pkg/server"
)

func renderCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Print the server-rendered page to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			srv := server.New(
				cfg.ToServerConfig(logger),
				homePage(cfg),
				newWidgetFactory(likes.Discard, cfg.Server.MountID, logger),
			)
			return srv.RenderPage(cmd.OutOrStdout())
		},
	}
}
