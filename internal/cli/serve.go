package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chunger/cfdb/graph"
	"github.com/chunger/cfdb/internal/httpapi"
)

func NewServeCommand(opts *RootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the database over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			httpCfg := opts.Config.HTTP
			if addr != "" {
				httpCfg.Addr = addr
			}
			db, err := opts.openDB(true)
			if err != nil {
				return err
			}
			defer db.Close()

			srv := httpapi.NewServer(graph.New(db), httpCfg, opts.Logger)
			if err := srv.Start(); err != nil {
				return WrapExitError(ExitFailure, "failed to start server", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			opts.Logger.Info("shutting down")
			return srv.Stop(context.Background())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}
