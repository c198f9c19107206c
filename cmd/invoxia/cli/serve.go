package cli

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/invoxia/bootstrap"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the HTTP API. The database is opened (and auto-migrated on sqlite),
the plugins and routes are registered, and the server runs until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := bootstrap.Load(configPath)
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cfg)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
}
