package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the storage layer.
// HTTP handlers should use errors.Is() to map these to appropriate HTTP status codes.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the operation conflicts with existing state
	// (e.g., a duplicate team or position name).
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates the input failed validation
	// (e.g., missing required fields).
	ErrValidation = errors.New("validation error")

	// ErrInvalidOrdering indicates a sort field or direction the store does
	// not support. It wraps ErrValidation.
	ErrInvalidOrdering = fmt.Errorf("invalid ordering: %w", ErrValidation)
)

// WrapIfConflict wraps a database error as ErrConflict if it represents a
// unique constraint violation. This detects UNIQUE errors from SQLite and
// duplicate key errors from PostgreSQL.
func WrapIfConflict(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "duplicate") {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// WrapIfForeignKey wraps a database error as ErrNotFound if it represents a
// foreign key violation, i.e. a reference to a row that does not exist.
func WrapIfForeignKey(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "FOREIGN KEY") || strings.Contains(msg, "foreign key") {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
