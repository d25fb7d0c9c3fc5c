package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrForbidden          = errors.New("not allowed to access this report")
	ErrConflict           = errors.New("conflicting report state")
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrEnqueueFailed      = errors.New("failed to enqueue jobs")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrOperationFailed    = errors.New("database operation failed")
)
