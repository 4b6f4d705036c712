package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/noah-isme/court-facilities-api/internal/app"
)

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and export workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logr, err := bootstrap()
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck
			if port > 0 {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := app.New(ctx, cfg, logr)
			if err != nil {
				return err
			}
			defer server.Close()
			return server.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "override PORT")
	return cmd
}
