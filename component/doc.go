// Package component defines lifecycle-managed infrastructure (database,
// tracer, HTTP server) and the registry that starts them in order, stops
// them in reverse and aggregates their health for the health endpoint.
package component
