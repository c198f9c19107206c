package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/kbukum/invoxia/bootstrap"
	"github.com/kbukum/invoxia/database"
	"github.com/kbukum/invoxia/database/migration"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/store"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations to postgres",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrations(cmd, func(r *migration.Runner, db *gorm.DB) error {
					return r.Up(db)
				})
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations, all of them unless steps is given",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps, err := parseSteps(args)
				if err != nil {
					return err
				}
				return withMigrations(cmd, func(r *migration.Runner, db *gorm.DB) error {
					if steps > 0 {
						return r.Steps(db, -steps)
					}
					return r.Down(db)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrations(cmd, func(r *migration.Runner, db *gorm.DB) error {
					v, dirty, err := r.Version(db)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", v, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("steps must be a positive integer (got: %s)", args[0])
	}
	return n, nil
}

// withMigrations loads the config, connects to postgres and runs fn with
// the store's migration runner.
func withMigrations(cmd *cobra.Command, fn func(r *migration.Runner, db *gorm.DB) error) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := bootstrap.Load(configPath)
	if err != nil {
		return err
	}
	cfg.ApplyDefaults()
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if cfg.Database.Driver != database.DriverPostgres {
		return fmt.Errorf("migrations target postgres; %s schemas are auto-migrated on serve", cfg.Database.Driver)
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	db, err := database.Open(cmd.Context(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return fn(store.Migrations(log.WithComponent("migrate")), db.GormDB)
}
