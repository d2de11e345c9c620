package repository

import (
	"errors"

	"github.com/juliancavero/mirestaurante-back/internal/db"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned by in-memory fakes; real repositories surface
// the Postgres unique violation instead. IsDuplicate covers both.
var ErrDuplicate = errors.New("duplicate")

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate) || db.IsUniqueViolation(err)
}
