package identity

import (
	"time"

	"github.com/rpggio/mobility/internal/domain/actor"
)

// Session is the resolved identity attached to every request.
type Session struct {
	ID          string     `json:"id"`
	ActorID     string     `json:"actorId"`
	DisplayName string     `json:"displayName"`
	Role        actor.Role `json:"role,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	ClosedAt    *time.Time `json:"closedAt,omitempty"`
}

// HasRole reports whether a role has been selected for the session.
func (s Session) HasRole() bool {
	return s.Role != ""
}

// Is reports whether the session acts in the given role.
func (s Session) Is(role actor.Role) bool {
	return s.Role == role
}

// LoginResult is returned by Login.
type LoginResult struct {
	Token      string       `json:"token"`
	Session    Session      `json:"session"`
	Actor      *actor.Actor `json:"actor"`
	FirstLogin bool         `json:"firstLogin"`
}
