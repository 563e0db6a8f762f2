package application

import (
	"fmt"

	"github.com/rpggio/mobility/internal/fault"
)

var (
	// ErrApplicationNotFound indicates the application doesn't exist or isn't visible to the caller.
	ErrApplicationNotFound = fmt.Errorf("application %w", fault.ErrNotFound)
	// ErrWindowClosed indicates the project is not accepting applications.
	ErrWindowClosed = fmt.Errorf("project is not accepting applications: %w", fault.ErrStateConflict)
	// ErrAlreadyDecided indicates the application already reached a terminal status.
	ErrAlreadyDecided = fmt.Errorf("application already decided: %w", fault.ErrStateConflict)
	// ErrDuplicate indicates an active application exists for the same project.
	ErrDuplicate = fmt.Errorf("an active application for this project already exists: %w", fault.ErrStateConflict)
	// ErrInvalidInput indicates invalid application input.
	ErrInvalidInput = fmt.Errorf("invalid application input: %w", fault.ErrValidation)
)

// ErrNotApplicant indicates an associate tried to read someone else's application.
var ErrNotApplicant = fmt.Errorf("application belongs to another associate: %w", fault.ErrForbidden)
