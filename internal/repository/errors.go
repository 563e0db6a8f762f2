package repository

import (
	"fmt"

	"github.com/rpggio/mobility/internal/fault"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = fmt.Errorf("entity %w", fault.ErrNotFound)

	// ErrConflict is returned when an insert collides with an existing key
	ErrConflict = fmt.Errorf("entity already exists: %w", fault.ErrStateConflict)

	// ErrCorruptDocument is returned when a stored document fails to decode or validate
	ErrCorruptDocument = fmt.Errorf("corrupt document: %w", fault.ErrStorage)

	// ErrInvalidInput is returned when a record fails validation before it is written
	ErrInvalidInput = fmt.Errorf("invalid input: %w", fault.ErrValidation)
)
