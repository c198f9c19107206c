// Package api exposes the services over HTTP.
//
// Request shapes are declared as structs with validate tags and checked by
// the validate decorator before authentication runs. Handlers read the
// decoded values with middleware.Body, Query and Params, call one service
// method and reply with the {message, data} envelope. Failures are handed
// to the error handler with c.Error.
package api
