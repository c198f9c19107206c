package validation

import (
	stderrors "errors"
	"strings"
)

// MessagePrefix starts every aggregated validation message.
const MessagePrefix = "Validation failed: "

// FieldError represents one violated rule.
type FieldError struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (f FieldError) String() string {
	if f.Path == "" {
		return f.Reason
	}
	return f.Path + ": " + f.Reason
}

// Errors is the schema-violation error: every violated field of one
// request part, in declaration order.
type Errors []FieldError

// Error joins the violations as "path: reason, path: reason".
func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, f := range e {
		parts[i] = f.String()
	}
	return strings.Join(parts, ", ")
}

// Message returns the client-facing aggregate message.
func (e Errors) Message() string { return MessagePrefix + e.Error() }

// AsErrors extracts schema violations from err.
func AsErrors(err error) (Errors, bool) {
	var verrs Errors
	if stderrors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}
