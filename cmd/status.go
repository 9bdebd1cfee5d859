package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/adapters/events"
	"github.com/bnema/pioneer-tx-cli/internal/adapters/progress"
	statusadapter "github.com/bnema/pioneer-tx-cli/internal/adapters/render/status"
	"github.com/bnema/pioneer-tx-cli/internal/application"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool
	var follow bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the progress dashboard snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if follow {
				return followProgress(cmd, app)
			}

			snapshot, err := app.progressClient().Snapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("load progress: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(progress.NewDataResponse(snapshot))
			}

			rendered, err := app.statusRenderer(statusadapter.FromSnapshot(snapshot), statusadapter.RenderOptions{
				Now:   app.now(),
				Quota: app.quota().Daily,
			})
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot as JSON")
	cmd.Flags().BoolVar(&follow, "follow", false, "Stream progress events from NATS until interrupted")

	return cmd
}

// followProgress prints one line per committed transfer published by runs.
func followProgress(cmd *cobra.Command, app *app) error {
	url := app.cfg.GetString("events.nats_url")
	if url == "" {
		return errors.New("--follow needs events.nats_url (PTX_EVENTS_NATS_URL)")
	}

	sub, err := events.NewSubscriber(url)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	ch, cancel, err := sub.Subscribe(app.cfg.GetString("events.subject"))
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case raw, ok := <-ch:
			if !ok {
				return nil
			}
			var event application.ProgressEvent
			if err := json.Unmarshal(raw, &event); err != nil {
				continue
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d/%d  run %s\n",
				event.Timestamp.Local().Format(time.TimeOnly), event.Account, event.Count, event.Quota, event.RunID)
		}
	}
}
