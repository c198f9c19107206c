// Package migration applies versioned SQL migrations with golang-migrate.
//
// Migration files are read from any fs.FS (typically an embed.FS) and must
// follow the pattern VERSION_name.up.sql / VERSION_name.down.sql. The
// database driver is supplied through DriverFunc; Postgres is provided.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	"github.com/kbukum/invoxia/logger"
)

// DriverFunc creates a migrate database driver from sql.DB.
type DriverFunc func(*sql.DB) (database.Driver, error)

// Postgres is the DriverFunc for PostgreSQL.
func Postgres(db *sql.DB) (database.Driver, error) {
	return migratepg.WithInstance(db, &migratepg.Config{})
}

// Runner applies the migrations found under Path in FS.
type Runner struct {
	FS     fs.FS
	Path   string
	Driver DriverFunc
	Log    *logger.Logger
}

// Up applies all pending migrations. No pending migrations is not an error.
func (r *Runner) Up(db *gorm.DB) error {
	m, err := r.migrator(db)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	r.logVersion(m, "Migrations applied")
	return nil
}

// Down rolls back all applied migrations.
func (r *Runner) Down(db *gorm.DB) error {
	m, err := r.migrator(db)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	r.logVersion(m, "Migrations rolled back")
	return nil
}

// Steps applies n migrations: positive goes up, negative goes down.
func (r *Runner) Steps(db *gorm.DB, n int) error {
	m, err := r.migrator(db)
	if err != nil {
		return err
	}
	if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate steps: %w", err)
	}
	r.logVersion(m, "Migration steps applied")
	return nil
}

// Version returns the current migration version and dirty flag.
// A database with no migrations applied reports version 0.
func (r *Runner) Version(db *gorm.DB) (uint, bool, error) {
	m, err := r.migrator(db)
	if err != nil {
		return 0, false, err
	}
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

func (r *Runner) logVersion(m *migrate.Migrate, msg string) {
	if r.Log == nil {
		return
	}
	v, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		r.Log.Warn("Could not read migration version", logger.ErrorFields("version", err))
		return
	}
	r.Log.Info(msg, map[string]interface{}{"version": v, "dirty": dirty})
}

// migrator builds a golang-migrate instance. Callers must not Close it:
// that would close the shared sql.DB.
func (r *Runner) migrator(db *gorm.DB) (*migrate.Migrate, error) {
	if r.Driver == nil {
		return nil, errors.New("migration: driver is required")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	driver, err := r.Driver(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("create database driver: %w", err)
	}
	source, err := iofs.New(r.FS, r.Path)
	if err != nil {
		return nil, fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "database", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	return m, nil
}
