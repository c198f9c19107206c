package errors

import "net/http"

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Stable wire codes, one per kind.
const (
	ErrCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrCodeAuthentication ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrCodeAuthorization  ErrorCode = "AUTHORIZATION_ERROR"
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeConflict       ErrorCode = "CONFLICT"
	ErrCodeRateLimit      ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal       ErrorCode = "INTERNAL_SERVER_ERROR"
)

// Refined codes that keep the status of their kind.
const (
	// ErrCodeInvalidSignature marks a webhook delivery whose signature did not verify.
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
)

// Kind tags an AppError. Dispatch happens on the kind, never on the Go type.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindUnauthorized   Kind = "unauthorized"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindRateLimit      Kind = "rate_limit"
	KindInternal       Kind = "internal"
)

type kindInfo struct {
	status         int
	code           ErrorCode
	operational    bool
	defaultMessage string
}

var kinds = map[Kind]kindInfo{
	KindValidation:     {http.StatusBadRequest, ErrCodeValidation, true, "Validation failed"},
	KindAuthentication: {http.StatusUnauthorized, ErrCodeAuthentication, true, "Authentication required"},
	KindUnauthorized:   {http.StatusUnauthorized, ErrCodeUnauthorized, true, "Unauthorized access"},
	KindAuthorization:  {http.StatusForbidden, ErrCodeAuthorization, true, "Insufficient permissions"},
	KindNotFound:       {http.StatusNotFound, ErrCodeNotFound, true, "Resource not found"},
	KindConflict:       {http.StatusConflict, ErrCodeConflict, true, "Resource conflict"},
	KindRateLimit:      {http.StatusTooManyRequests, ErrCodeRateLimit, true, "Rate limit exceeded"},
	KindInternal:       {http.StatusInternalServerError, ErrCodeInternal, false, "Internal server error"},
}

// Status returns the HTTP status bound to the kind.
// Unknown kinds map to 500.
func (k Kind) Status() int {
	if s, ok := kinds[k]; ok {
		return s.status
	}
	return http.StatusInternalServerError
}

// Code returns the stable wire code bound to the kind.
func (k Kind) Code() ErrorCode {
	if s, ok := kinds[k]; ok {
		return s.code
	}
	return ErrCodeInternal
}

// Operational reports whether failures of this kind are expected and user-facing.
func (k Kind) Operational() bool {
	return kinds[k].operational
}
