package store

import (
	"embed"

	"github.com/kbukum/invoxia/database/migration"
	"github.com/kbukum/invoxia/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the postgres migration runner for the store schema.
func Migrations(log *logger.Logger) *migration.Runner {
	return &migration.Runner{
		FS:     migrationsFS,
		Path:   "migrations",
		Driver: migration.Postgres,
		Log:    log,
	}
}
