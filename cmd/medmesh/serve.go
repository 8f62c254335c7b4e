package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/medmesh/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Start the HTTP API:

  POST /api/analyze        multipart form with "note" and/or "image"
  GET  /api/analyses       recent audit records (?limit=N)
  GET  /api/analyses/:id   a single audit record
  GET  /healthz            liveness
  GET  /metrics            Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close(context.WithoutCancel(ctx)) //nolint:errcheck

		addr := a.cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(a.mesh, func(o *server.Options) {
			o.Store = a.store
			o.MaxUploadBytes = a.cfg.Server.MaxUploadBytes
			o.MaxImagePixels = a.cfg.Server.MaxImagePixels
			o.ReadTimeout = a.cfg.Server.ReadTimeout
			o.WriteTimeout = a.cfg.Server.WriteTimeout
			o.ShutdownTimeout = a.cfg.Server.ShutdownTimeout
			o.Debug = a.cfg.Log.Level == "debug"
			o.Logger = a.logger
		})

		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
}
