package actor

import (
	"fmt"

	"github.com/rpggio/mobility/internal/fault"
)

var (
	// ErrActorNotFound indicates no profile or directory entry exists for the id.
	ErrActorNotFound = fmt.Errorf("actor %w", fault.ErrNotFound)
	// ErrProfileExists indicates a self-service profile already exists.
	ErrProfileExists = fmt.Errorf("profile already exists: %w", fault.ErrStateConflict)
	// ErrNotOwner indicates an actor tried to read or change someone else's profile.
	ErrNotOwner = fmt.Errorf("profile belongs to another actor: %w", fault.ErrForbidden)
	// ErrInvalidInput indicates invalid profile input.
	ErrInvalidInput = fmt.Errorf("invalid profile input: %w", fault.ErrValidation)
)
