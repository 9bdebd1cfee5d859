package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	statusadapter "github.com/bnema/pioneer-tx-cli/internal/adapters/render/status"
	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/spf13/cobra"
)

var errNoAccounts = errors.New("no accounts registered; add one with `ptx account add`")

func newRunCmd(app *app) *cobra.Command {
	var accountIDs []string
	var headful bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Complete today's transfer quota for every account (or the selected ones)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := app.service()
			if err != nil {
				return err
			}

			ids := make([]domain.AccountID, 0, len(accountIDs))
			for _, id := range accountIDs {
				ids = append(ids, domain.AccountID(id))
			}
			credentials, err := svc.Credentials(cmd.Context(), ids...)
			if err != nil {
				return err
			}
			if len(credentials) == 0 {
				return errNoAccounts
			}

			if headful {
				app.cfg.Set("browser.headless", false)
			}

			log := logger.Named("run")
			for _, credential := range credentials {
				log.Info("account queued", slog.Any("credential", credential))
			}

			pipeline, err := app.buildPipeline(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := pipeline.Close(); closeErr != nil {
					log.Warn("teardown failed", slog.String("error", closeErr.Error()))
				}
			}()
			app.serveMetrics(cmd.Context(), pipeline.metrics)

			results := pipeline.runner.RunAll(cmd.Context(), credentials)

			rendered, err := app.statusRenderer(statusadapter.FromResults(results), statusadapter.RenderOptions{
				Now:   app.now(),
				Quota: app.quota().Daily,
			})
			if err != nil {
				return fmt.Errorf("render run summary: %w", err)
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
				return err
			}

			failed := 0
			for _, result := range results {
				if result.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d accounts did not finish their quota", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&accountIDs, "account", nil, "Account IDs to run (default: all)")
	cmd.Flags().BoolVar(&headful, "headful", false, "Show the browser window")

	return cmd
}
