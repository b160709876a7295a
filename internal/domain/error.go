package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUniqueViolation = errors.New("unique constraint violation")
	ErrReadDatabaseRow = errors.New("failed to read database row")
)
