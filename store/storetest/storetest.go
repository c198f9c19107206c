// Package storetest opens throwaway sqlite stores for tests.
package storetest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/kbukum/invoxia/database"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/store"
)

// New returns a store over a private in-memory sqlite database with the
// schema migrated. The database is closed when the test ends.
func New(t testing.TB) *store.Store {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := database.Config{
		Driver:   database.DriverSQLite,
		DSN:      fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
		LogLevel: "silent",
	}
	db, err := database.Open(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("storetest: open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.AutoMigrate(store.Models()...); err != nil {
		t.Fatalf("storetest: migrate: %v", err)
	}
	return store.New(db.GormDB)
}
