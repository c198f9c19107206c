// Package database opens the gorm connection used by the storage layer.
//
// Two drivers are supported: postgres for deployed environments and sqlite
// for development and tests. The connection is established with retries,
// pooled according to Config, and exposed to the application through
// Component, which plugs into the component registry for lifecycle and
// health reporting.
//
//	comp := database.NewComponent(cfg.Database, log).
//	    WithAutoMigrate(store.Models()...)
//	registry.Register(comp)
//
// Versioned SQL migrations for postgres live in the migration subpackage.
package database
