package cmd

import (
	"log/slog"

	"github.com/bnema/pioneer-tx-cli/internal/adapters/progress/server"
	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/spf13/cobra"
)

func newServeCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the progress dashboard and its JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := app.progressBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					logger.Named("serve").Warn("close progress store", slog.String("error", err.Error()))
				}
			}()

			srv := server.New(server.Config{
				Addr:  app.cfg.GetString("progress.addr"),
				Quota: app.quota().Daily,
			}, store)
			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default :3000)")
	cmd.Flags().String("store", "", "Progress backend (memory|redis)")
	_ = app.cfg.BindPFlag("progress.addr", cmd.Flags().Lookup("addr"))
	_ = app.cfg.BindPFlag("progress.store", cmd.Flags().Lookup("store"))

	return cmd
}
