// Package server provides the HTTP server: a gin engine behind an h2c
// handler, run as a lifecycle component.
//
// Cross-cutting behavior is not installed here. The plugin registrar adds
// it to the engine (see package plugin); only concerns that must wrap the
// raw http.Handler, such as the body size limit, are applied with Use.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - RequestID: x-request-id propagation
//   - RequestLogger: access log by status
//   - Metrics, Tracing: Prometheus and OpenTelemetry per request
//   - Authenticate, RequirePermission: bearer token and role checks
//   - Validate: per-route schema validation of body, query, params, headers
//   - ErrorHandler: the only writer of error responses
//   - CORS, SecurityHeaders, RateLimit, BodySizeLimit
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - Health: service status with component health
//   - Version: build version information
package server
