package database

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFoundError reports whether err is gorm's record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
// Connections opened by Open translate driver errors, so both postgres and
// sqlite surface as gorm.ErrDuplicatedKey.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
