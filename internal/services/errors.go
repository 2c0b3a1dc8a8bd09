package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Error taxonomy shared by every service. Handlers map these onto HTTP status
// codes; anything unwrapped is treated as an internal error.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrUnverified      = errors.New("unverified")
	ErrCartEmpty       = errors.New("cart is empty")
)

// isRecordNotFound reports whether err stems from a missing database record.
func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicateKey reports whether err stems from a violated unique index. The
// string checks cover the raw Postgres and SQLite driver errors when GORM's
// error translation is not active.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
