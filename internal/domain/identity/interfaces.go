package identity

import (
	"context"

	"github.com/rpggio/mobility/internal/domain/actor"
)

// SessionRepository provides persistence for sessions.
type SessionRepository interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	// SetRole fixes the role of a session that has none yet.
	SetRole(ctx context.Context, id string, role actor.Role) error
	Close(ctx context.Context, id string) error
}

// ActorDirectory resolves and provisions actors at login.
type ActorDirectory interface {
	Ensure(ctx context.Context, id, displayName string) (*actor.Actor, bool, error)
	AdoptRole(ctx context.Context, id string, role actor.Role) (*actor.Actor, error)
}
