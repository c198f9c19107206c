package middleware

import (
	"net/http"
)

// Middleware wraps an http.Handler. It is applied at the server level,
// outside gin, for concerns that must see every request (body limits).
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
