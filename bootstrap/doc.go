// Package bootstrap assembles and runs the invoxia service.
//
// Startup runs in three phases:
//
//  1. components: the database connects (and auto-migrates on sqlite)
//  2. configure: the built-in plugins register on the gin engine, then the
//     services and routes are wired against the capabilities they installed
//  3. serve: the HTTP server starts listening
//
// Shutdown stops the server first, then the database, then runs plugin
// cleanups.
//
//	cfg, err := bootstrap.Load("")
//	app, err := bootstrap.New(cfg)
//	err = app.Run(ctx)
package bootstrap
