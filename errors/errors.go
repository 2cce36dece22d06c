package errors

import (
	"github.com/cockroachdb/errors"
)

var (
	ErrNoMemory = errors.New("insufficient memory")
	ErrStages   = errors.New("growth stages must be non-empty and strictly ascending")
	ErrBackend  = errors.New("unknown backend")
	ErrConfig   = errors.New("unsupported config format")

	// Precondition violations below are never returned, only carried by panics.
	ErrNilTable = errors.New("nil table")
	ErrFreed    = errors.New("table is already freed")
	ErrVisitor  = errors.New("nil visitor")
	ErrOverFree = errors.New("freeing more memory than reserved")
)

// Is re-exports errors.Is, so callers don't need to import two errors packages.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Wrapf annotates err with a formatted message, keeping it matchable via Is.
func Wrapf(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}
