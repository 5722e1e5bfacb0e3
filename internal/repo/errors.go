package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates that an insert hit a unique constraint.
var ErrDuplicate = errors.New("duplicate")

// IsDuplicate detects unique-constraint violations across drivers that may
// not map to gorm.ErrDuplicatedKey.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite returns plain-text errors for UNIQUE violations;
	// postgres says "duplicate key value violates unique constraint".
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

// mapCreateErr turns unique violations into ErrDuplicate.
func mapCreateErr(err error) error {
	if IsDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// likePattern builds a lower-cased LIKE pattern for substring search.
// LIKE metacharacters in q are escaped with a backslash.
func likePattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}
