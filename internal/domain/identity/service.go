package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/repository"
)

// DefaultSessionTTL bounds the lifetime of a session token.
const DefaultSessionTTL = 12 * time.Hour

// Service maps session tokens to actors.
type Service struct {
	sessions SessionRepository
	actors   ActorDirectory
	tokens   *TokenCodec
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new identity service.
func NewService(sessions SessionRepository, actors ActorDirectory, tokens *TokenCodec, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		sessions: sessions,
		actors:   actors,
		tokens:   tokens,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// LoginRequest identifies the person logging in.
type LoginRequest struct {
	ActorID     string
	DisplayName string
}

// Login opens a session without a role. The actor is created on first login.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	actorID := strings.TrimSpace(req.ActorID)
	if actorID == "" {
		return nil, fmt.Errorf("actor id required: %w", ErrInvalidInput)
	}

	a, created, err := s.actors.Ensure(ctx, actorID, req.DisplayName)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = a.Name
	}

	now := s.now()
	sess := &Session{
		ID:          uuid.NewString(),
		ActorID:     a.ID,
		DisplayName: displayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	token, err := s.tokens.Issue(*sess)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session opened", "session_id", sess.ID, "actor_id", a.ID, "first_login", created)
	return &LoginResult{Token: token, Session: *sess, Actor: a, FirstLogin: created}, nil
}

// Resolve maps a token to its live session.
func (s *Service) Resolve(ctx context.Context, token string) (*Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	sessionID, actorID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess.ActorID != actorID {
		return nil, ErrInvalidToken
	}
	if sess.ClosedAt != nil {
		return nil, ErrSessionClosed
	}
	if !sess.ExpiresAt.IsZero() && s.now().After(sess.ExpiresAt) {
		return nil, ErrInvalidToken
	}
	return sess, nil
}

// SelectRole fixes the session's role for the rest of its lifetime.
func (s *Service) SelectRole(ctx context.Context, token string, role actor.Role) (*Session, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrInvalidInput)
	}

	sess, err := s.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.HasRole() {
		return nil, ErrRoleAlreadySelected
	}

	if _, err := s.actors.AdoptRole(ctx, sess.ActorID, role); err != nil {
		return nil, err
	}

	if err := s.sessions.SetRole(ctx, sess.ID, role); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrRoleAlreadySelected
		}
		return nil, fmt.Errorf("setting role: %w", err)
	}
	sess.Role = role

	s.logger.Info("role selected", "session_id", sess.ID, "actor_id", sess.ActorID, "role", role)
	return sess, nil
}

// Logout closes the session named by token.
func (s *Service) Logout(ctx context.Context, token string) error {
	sess, err := s.Resolve(ctx, token)
	if err != nil {
		return err
	}
	if err := s.sessions.Close(ctx, sess.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}
