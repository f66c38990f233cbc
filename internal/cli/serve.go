package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FranksOps/scout/internal/server"
)

func newServeCommand(cfgFile *string) *cobra.Command {
	run := withDeps(cfgFile, func(ctx context.Context, d *deps, _ []string) error {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(server.Config{
			Addr:            d.cfg.Server.Address(),
			Debug:           d.cfg.Server.Debug,
			ReadTimeout:     d.cfg.Server.ReadTimeout,
			WriteTimeout:    d.cfg.Server.WriteTimeout,
			ShutdownTimeout: d.cfg.Server.ShutdownTimeout,
		}, d.pipeline, d.logger)
		return srv.Run(ctx)
	})

	return &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /query over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), args)
		},
	}
}
