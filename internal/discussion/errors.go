package discussion

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Failures surfaced to callers. Wrapped errors carry the detail; callers
// branch on these with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrPermission = errors.New("permission denied")
	ErrNotFound   = errors.New("not found")
)

// notFound maps gorm's missing-row error onto ErrNotFound and passes
// everything else through.
func notFound(err error, what error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return what
	}
	return err
}

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// retryable reports whether a transaction failed only because it raced
// another one and can be run again from the start.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}

// uniqueViolation reports whether err is a postgres unique constraint failure.
func uniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
