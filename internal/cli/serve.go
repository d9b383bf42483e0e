package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"prioq/internal/api"
	"prioq/internal/metrics"
	"prioq/internal/store"
	"prioq/internal/telemetry"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the prioq HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}

			db, err := store.Open(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			shutdown, err := telemetry.InitTracer(ctx, "prioq", a.cfg.OtelEndpoint)
			if err != nil {
				return err
			}
			defer shutdown()

			srv := api.NewServer(a.log, metrics.NewCollector(), db)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (overrides config)")
	return cmd
}

