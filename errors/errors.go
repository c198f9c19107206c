package errors

import (
	"fmt"
	"runtime/debug"
)

// AppError is the unified application failure.
type AppError struct {
	// Kind selects status, code and operational flag.
	Kind Kind `json:"-"`
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the status written to the wire.
	HTTPStatus int `json:"statusCode"`
	// Operational marks expected, user-facing failures.
	Operational bool `json:"-"`
	// RequestID correlates the failure with the request that raised it.
	RequestID string `json:"requestId,omitempty"`
	// Details contains additional context for logs.
	Details map[string]any `json:"-"`
	// Cause is the underlying error. Never serialized.
	Cause error `json:"-"`

	stack []byte
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Stack returns the goroutine stack captured when a non-operational
// failure was built, or "" for operational ones.
func (e *AppError) Stack() string { return string(e.stack) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCode overrides the wire code while keeping the kind's status.
func (e *AppError) WithCode(code ErrorCode) *AppError {
	e.Code = code
	return e
}

// WithRequestID returns a copy of the error bound to a request id.
func (e *AppError) WithRequestID(id string) *AppError {
	cp := *e
	cp.RequestID = id
	return &cp
}

// New creates an AppError of the given kind. An empty message falls back to
// the kind's default message.
func New(kind Kind, message string) *AppError {
	info, ok := kinds[kind]
	if !ok {
		kind = KindInternal
		info = kinds[KindInternal]
	}
	if message == "" {
		message = info.defaultMessage
	}
	e := &AppError{
		Kind:        kind,
		Code:        info.code,
		Message:     message,
		HTTPStatus:  info.status,
		Operational: info.operational,
	}
	if !info.operational {
		e.stack = debug.Stack()
	}
	return e
}

// --- Kind constructors ---

// Validation creates a 400 failure for bad input.
func Validation(message string) *AppError { return New(KindValidation, message) }

// Authentication creates a 401 failure for bad credentials.
func Authentication(message string) *AppError { return New(KindAuthentication, message) }

// Unauthorized creates a 401 failure for a missing or invalid token.
func Unauthorized(message string) *AppError { return New(KindUnauthorized, message) }

// Authorization creates a 403 failure for an authenticated caller lacking access.
func Authorization(message string) *AppError { return New(KindAuthorization, message) }

// NotFound creates a 404 failure naming the missing resource and, when
// given, its identifier.
func NotFound(resource, id string) *AppError {
	msg := resource + " not found"
	if id != "" {
		msg = fmt.Sprintf("%s with identifier '%s' not found", resource, id)
	}
	e := New(KindNotFound, msg).WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// Conflict creates a 409 failure for state that already exists.
func Conflict(message string) *AppError { return New(KindConflict, message) }

// RateLimit creates a 429 failure.
func RateLimit(message string) *AppError { return New(KindRateLimit, message) }

// Internal creates a non-operational 500 failure wrapping cause.
func Internal(message string, cause error) *AppError {
	return New(KindInternal, message).WithCause(cause)
}
