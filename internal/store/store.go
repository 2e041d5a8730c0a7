package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/smartstore/backend/internal/apperr"
)

// Store is the single data-access layer. Every method threads its context
// into gorm so request cancellation propagates to the driver.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

// conflictOr translates storage-level integrity violations into a typed
// conflict; anything else stays an internal error.
func conflictOr(err error, msg string) error {
	if isUniqueViolation(err) {
		return apperr.Conflict(msg)
	}
	return apperr.Wrap(apperr.KindInternal, "database error", err)
}
