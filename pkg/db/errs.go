package db

import (
	"errors"
	"fmt"
)

var (
	// kinds, callers test them with errors.Is.
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalid            = errors.New("invalid argument")
)

var (
	// database errs.
	ErrDBPathEmpty   = fmt.Errorf("%w: database path is empty", ErrStorageUnavailable)
	ErrDBClosed      = fmt.Errorf("%w: database is closed", ErrStorageUnavailable)
	ErrDriverUnknown = fmt.Errorf("%w: unknown driver", ErrStorageUnavailable)
)

var (
	// records errs.
	ErrProjectNotFound  = fmt.Errorf("project %w", ErrNotFound)
	ErrEntryNotFound    = fmt.Errorf("entry %w", ErrNotFound)
	ErrTagNotFound      = fmt.Errorf("tag %w", ErrNotFound)
	ErrTemplateNotFound = fmt.Errorf("template %w", ErrNotFound)
	ErrTagExists        = fmt.Errorf("%w: tag already exists", ErrConflict)
	ErrDefaultTag       = fmt.Errorf("%w: default tags cannot be deleted", ErrForbidden)
)

// invalid marks a validation error as ErrInvalid while keeping the cause.
func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}
