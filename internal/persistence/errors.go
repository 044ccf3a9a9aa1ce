package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness rule would be violated.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrForeignKeyViolation is returned when a record is still referenced.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned when a stored value breaks a schema constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
