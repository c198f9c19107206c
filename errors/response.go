package errors

import (
	stderrors "errors"
)

// GenericInternalMessage replaces the message of any failure that was not
// raised as an *AppError before it reaches a client.
const GenericInternalMessage = "An unexpected error occurred"

// ErrorResponse is the JSON structure returned to API clients.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains the error details sent to clients.
type ErrorBody struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode"`
	RequestID  string    `json:"requestId"`
}

// WebhookResponse is the minimal body sent to webhook callers.
type WebhookResponse struct {
	Message string `json:"message"`
}

// ToResponse converts an AppError to an ErrorResponse for JSON serialization.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:       e.Code,
			Message:    e.Message,
			StatusCode: e.HTTPStatus,
			RequestID:  e.RequestID,
		},
	}
}

// ToWebhookResponse converts an AppError to the webhook body.
func (e *AppError) ToWebhookResponse() WebhookResponse {
	return WebhookResponse{Message: e.Message}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Kind == kind
}

// Wrap returns err as an AppError. Errors that are not already typed become
// Internal with a generic message; the original is kept as the cause.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(GenericInternalMessage, err)
}
