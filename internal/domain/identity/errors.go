package identity

import (
	"fmt"

	"github.com/rpggio/mobility/internal/fault"
)

var (
	// ErrMissingToken indicates the request carried no session token.
	ErrMissingToken = fmt.Errorf("missing session token: %w", fault.ErrUnauthenticated)
	// ErrInvalidToken indicates a malformed, forged or expired token.
	ErrInvalidToken = fmt.Errorf("invalid session token: %w", fault.ErrUnauthenticated)
	// ErrSessionClosed indicates the session was logged out.
	ErrSessionClosed = fmt.Errorf("session closed: %w", fault.ErrUnauthenticated)
	// ErrRoleAlreadySelected indicates the session role is already fixed.
	ErrRoleAlreadySelected = fmt.Errorf("role already selected for session: %w", fault.ErrStateConflict)
	// ErrInvalidInput indicates invalid login input.
	ErrInvalidInput = fmt.Errorf("invalid login input: %w", fault.ErrValidation)
)
