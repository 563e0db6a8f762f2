package authz

import (
	"fmt"

	"github.com/rpggio/mobility/internal/fault"
)

var (
	// ErrRoleRequired indicates the session must select a role first.
	ErrRoleRequired = fmt.Errorf("select a role before continuing: %w", fault.ErrRoleRequired)
	// ErrManagerOnly indicates a manager-scoped operation was requested by a non-manager.
	ErrManagerOnly = fmt.Errorf("operation requires the manager role: %w", fault.ErrForbidden)
	// ErrAssociateOnly indicates an associate-scoped operation was requested by a non-associate.
	ErrAssociateOnly = fmt.Errorf("operation requires the associate role: %w", fault.ErrForbidden)
	// ErrNotOwner indicates the record is owned by a different manager.
	ErrNotOwner = fmt.Errorf("record owned by another manager: %w", fault.ErrForbidden)
	// ErrProfileIncomplete indicates the associate must declare at least one skill.
	ErrProfileIncomplete = fmt.Errorf("declare at least one skill first: %w", fault.ErrProfileIncomplete)
)
