// Package db implements the database manager: a single lazily-created GORM
// handle with scoped-cursor transaction helpers and typed query, insert, and
// update operations. This file centralizes the error taxonomy the manager
// exposes to callers.
//
// The two sentinel kinds mirror the failure classes that matter to the web
// layer: ErrConnection means the database could not be reached at all, while
// ErrOperation means a statement failed once connected. Repositories pass
// these through unchanged; only handlers translate them into HTTP responses.
package db

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection indicates the underlying connect (or reconnect) call
	// failed and no usable handle exists.
	ErrConnection = errors.New("database connection failed")

	// ErrOperation indicates a query, insert, update, or schema statement
	// failed after a connection was established.
	ErrOperation = errors.New("database operation failed")
)

// connErr wraps a low-level driver failure as a connection-kind error.
func connErr(err error) error {
	return fmt.Errorf("%w: %w", ErrConnection, err)
}

// opErr wraps a low-level driver failure as an operation-kind error. Errors
// already classified as connection failures keep their kind.
func opErr(err error) error {
	if errors.Is(err, ErrConnection) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrOperation, err)
}
