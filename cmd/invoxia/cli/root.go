// Package cli holds the invoxia command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the invoxia command with its subcommands.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "invoxia",
		Short:         "Multi-tenant invoicing backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (default: ./config.yml or ./cmd/invoxia/config.yml)")

	root.AddCommand(newServeCommand(), newMigrateCommand(), newVersionCommand())
	return root
}
