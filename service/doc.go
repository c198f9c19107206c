// Package service implements the application use cases on top of the store:
// signup and signin, tenant settings, tenant-scoped contacts and the
// WhatsApp webhook.
//
// Services return *errors.AppError for every expected failure so the HTTP
// layer can pass them straight to the error handler. Storage failures are
// returned unchanged and end up as internal errors.
package service
