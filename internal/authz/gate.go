package authz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/fault"
)

// SessionResolver maps a token to a live session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*identity.Session, error)
}

// ProfileReader loads the actor behind a session.
type ProfileReader interface {
	Get(ctx context.Context, id string) (*actor.Actor, error)
}

// Gate is the single capability check in front of every guarded operation.
type Gate struct {
	sessions SessionResolver
	profiles ProfileReader
	logger   *slog.Logger
}

// NewGate creates a new gate.
func NewGate(sessions SessionResolver, profiles ProfileReader, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gate{sessions: sessions, profiles: profiles, logger: logger}
}

// Authorize resolves token and checks op against the session. Rules run in order:
// authentication, role selection, manager scope, associate scope, profile completeness.
// Ownership is checked separately with RequireOwner once the record is loaded.
func (g *Gate) Authorize(ctx context.Context, token string, op Operation) (*identity.Session, error) {
	sess, err := g.sessions.Resolve(ctx, token)
	if err != nil {
		if !errors.Is(err, fault.ErrUnauthenticated) {
			return nil, fmt.Errorf("resolving session: %w", err)
		}
		return nil, err
	}
	if !sess.HasRole() {
		return nil, ErrRoleRequired
	}
	switch op.Scope {
	case ScopeManager:
		if !sess.Is(actor.RoleManager) {
			g.logger.Debug("denied", "op", op.Name, "actor_id", sess.ActorID, "role", sess.Role)
			return nil, ErrManagerOnly
		}
	case ScopeAssociate:
		if !sess.Is(actor.RoleAssociate) {
			g.logger.Debug("denied", "op", op.Name, "actor_id", sess.ActorID, "role", sess.Role)
			return nil, ErrAssociateOnly
		}
	}
	if op.NeedsProfile && sess.Is(actor.RoleAssociate) {
		if err := g.requireProfile(ctx, sess.ActorID); err != nil {
			return nil, err
		}
	}
	return sess, nil
}

func (g *Gate) requireProfile(ctx context.Context, actorID string) error {
	a, err := g.profiles.Get(ctx, actorID)
	if err != nil {
		if errors.Is(err, fault.ErrNotFound) {
			return ErrProfileIncomplete
		}
		return fmt.Errorf("loading profile: %w", err)
	}
	if !a.HasMinimumProfile() {
		return ErrProfileIncomplete
	}
	return nil
}

// Navigate decides whether token may enter area, and where to send it otherwise.
func (g *Gate) Navigate(ctx context.Context, token string, area Area) (Decision, error) {
	op, ok := areaOps[area]
	if !ok {
		return Decision{}, fmt.Errorf("unknown area %q: %w", area, fault.ErrValidation)
	}
	_, err := g.Authorize(ctx, token, op)
	switch fault.KindOf(err) {
	case fault.KindNone:
		return Decision{Allowed: true}, nil
	case fault.KindUnauthenticated:
		return Decision{Redirect: RedirectLogin, Reason: err.Error()}, nil
	case fault.KindRoleRequired:
		return Decision{Redirect: RedirectSelectRole, Reason: err.Error()}, nil
	case fault.KindProfileIncomplete:
		return Decision{Redirect: RedirectProfile, Reason: err.Error()}, nil
	case fault.KindForbidden:
		return Decision{Redirect: RedirectForbidden, Reason: err.Error()}, nil
	default:
		return Decision{}, err
	}
}

// RequireManager checks that sess acts as a manager.
func RequireManager(sess *identity.Session) error {
	if sess == nil {
		return identity.ErrMissingToken
	}
	if !sess.Is(actor.RoleManager) {
		return ErrManagerOnly
	}
	return nil
}

// RequireOwner checks that sess is the manager owning a record.
func RequireOwner(sess *identity.Session, ownerID string) error {
	if err := RequireManager(sess); err != nil {
		return err
	}
	if sess.ActorID != ownerID {
		return ErrNotOwner
	}
	return nil
}
