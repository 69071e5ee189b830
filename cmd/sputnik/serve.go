package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sputnik-dev/sputnik/internal/config"
	serrors "github.com/sputnik-dev/sputnik/internal/errors"
	"github.com/sputnik-dev/sputnik/pkg/server"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		addr string
		dev  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		Example: `  sputnik serve
  sputnik serve --addr :3000 --dev
  SPUTNIK_SESSION_STORE=redis SPUTNIK_REDIS_ADDR=localhost:6379 sputnik serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}
			if dev {
				cfg.Server.DevMode = true
				cfg.Log.Level = "debug"
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := cfg.Log.NewLogger(os.Stderr)
			if f := cfg.File(); f != "" {
				logger.Info("loaded config", "file", f)
			}

			b, err := openBackends(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := b.Close(); err != nil {
					logger.Warn("closing backends", "error", err)
				}
			}()

			var opts []server.Option
			if b.store != nil {
				opts = append(opts, server.WithStore(b.store))
			}
			if b.counter != nil {
				opts = append(opts, server.WithLikeCounter(b.counter))
			}
			srv := server.New(
				cfg.ToServerConfig(logger),
				homePage(cfg),
				newWidgetFactory(b.recorder, cfg.Server.MountID, logger),
				opts...,
			)

			// Fail fast on a page without a mount point.
			if err := srv.RenderPage(io.Discard); err != nil {
				return err
			}

			if err := srv.Run(); err != nil {
				return serrors.New("E401").Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.address)")
	cmd.Flags().BoolVar(&dev, "dev", false, "development mode: debug logging, any origin, no client caching")
	return cmd
}
