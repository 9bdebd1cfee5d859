package cmd

import (
	"context"

	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	app := wireApp()
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "ptx",
		Short: "Pioneer transfer CLI (ptx): run the daily wallet transfers for every account",
		Long: "ptx keeps a registry of Particle Pioneer accounts, drives the in-page wallet through " +
			"the daily quota of transfers for each of them in parallel, and serves a live progress dashboard.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadConfigFile(app.cfg, configPath); err != nil {
				return err
			}
			return app.initLogger()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/ptx/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	_ = app.cfg.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(
		newVersionCmd(),
		newAccountCmd(app),
		newRunCmd(app),
		newResumeCmd(app),
		newServeCmd(app),
		newStatusCmd(app),
	)

	return rootCmd
}
