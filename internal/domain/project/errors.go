package project

import (
	"fmt"

	"github.com/rpggio/mobility/internal/fault"
)

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = fmt.Errorf("project %w", fault.ErrNotFound)
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = fmt.Errorf("invalid project input: %w", fault.ErrValidation)
)
