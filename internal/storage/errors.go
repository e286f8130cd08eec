// Package storage holds the sentinel errors shared by all repositories.
// Repositories translate driver errors (pgx.ErrNoRows, unique violations)
// into these so callers never depend on pgx directly.
package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound means the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means an insert hit a unique constraint.
	ErrDuplicate = errors.New("already exists")
)

// IsUniqueViolation reports whether err is a PostgreSQL unique violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
