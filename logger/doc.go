// Package logger wraps zerolog with service/component tagging and
// request-scoped fields pulled from context.Context.
package logger
