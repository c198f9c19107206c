package validation

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/invoxia/errors"
)

// Validator collects rule violations for values checked in code.
type Validator struct {
	errors Errors
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{}
}

// AddError adds a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Path: field, Reason: message})
}

// HasErrors returns true if there are validation errors.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors.
func (v *Validator) Errors() Errors {
	return v.errors
}

// Validate returns a Validation AppError aggregating every violation, or nil.
func (v *Validator) Validate() error {
	if !v.HasErrors() {
		return nil
	}
	return errors.Validation(v.errors.Message()).WithDetail("fields", []FieldError(v.errors))
}

// Required checks if a string is non-empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "Required")
	}
	return v
}

// UUID checks that value parses as a non-nil UUID.
func (v *Validator) UUID(field, value string) *Validator {
	id, err := uuid.Parse(value)
	if err != nil || id == uuid.Nil {
		v.AddError(field, "Invalid UUID")
	}
	return v
}

// MinLength checks if a string meets minimum length.
func (v *Validator) MinLength(field, value string, minLen int) *Validator {
	if len([]rune(value)) < minLen {
		v.AddError(field, fmt.Sprintf("Must be at least %d characters", minLen))
	}
	return v
}

// Range checks if a number is within a range.
func (v *Validator) Range(field string, value, minVal, maxVal int) *Validator {
	if value < minVal || value > maxVal {
		v.AddError(field, fmt.Sprintf("Must be between %d and %d", minVal, maxVal))
	}
	return v
}

// OneOf checks if a value is one of the allowed values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value != "" && !slices.Contains(allowed, value) {
		v.AddError(field, "Must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

// Email checks that value is a valid address of 5 to 254 characters.
func (v *Validator) Email(field, value string) *Validator {
	if len(value) < 5 || len(value) > 254 || Default().v.Var(value, "email") != nil {
		v.AddError(field, "Invalid email format")
	}
	return v
}

// Phone checks that value is an E.164 number.
func (v *Validator) Phone(field, value string) *Validator {
	if !ValidPhone(value) {
		v.AddError(field, PhoneMessage)
	}
	return v
}

// CUIT checks the CUIT check digit.
func (v *Validator) CUIT(field, value string) *Validator {
	if !ValidCUIT(value) {
		v.AddError(field, "Invalid CUIT")
	}
	return v
}

// SafePath checks that value is an absolute, clean file path ending in
// one of the given extensions.
func (v *Validator) SafePath(field, value string, extensions ...string) *Validator {
	switch {
	case !filepath.IsAbs(value):
		v.AddError(field, "Must be an absolute path")
	case strings.Contains(value, ".."):
		v.AddError(field, "Must not contain '..'")
	case len(extensions) > 0 && !slices.Contains(extensions, strings.ToLower(filepath.Ext(value))):
		v.AddError(field, "Must end with one of: "+strings.Join(extensions, ", "))
	}
	return v
}

// Custom applies a custom validation condition.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}
