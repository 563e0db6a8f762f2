package actor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/mobility/internal/domain/match"
	"github.com/rpggio/mobility/internal/fault"
	"github.com/rpggio/mobility/internal/repository"
)

// Service handles actor profile operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new actor service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// ProfileRequest carries the editable profile fields.
type ProfileRequest struct {
	Name                string
	Email               string
	Title               string
	Department          string
	YearsExperience     int
	Skills              []string
	DesiredTechnologies []string
	OpenToOpportunities bool
}

func (r ProfileRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name required: %w", ErrInvalidInput)
	}
	if r.YearsExperience < 0 {
		return fmt.Errorf("years of experience must not be negative: %w", ErrInvalidInput)
	}
	return nil
}

func (r ProfileRequest) apply(a *Actor) {
	a.Name = strings.TrimSpace(r.Name)
	a.Email = strings.TrimSpace(r.Email)
	a.Title = strings.TrimSpace(r.Title)
	a.Department = strings.TrimSpace(r.Department)
	a.YearsExperience = r.YearsExperience
	a.Skills = match.Clean(r.Skills)
	a.DesiredTechnologies = match.Clean(r.DesiredTechnologies)
	a.OpenToOpportunities = r.OpenToOpportunities
}

// Get reads a profile by identity.
func (s *Service) Get(ctx context.Context, id string) (*Actor, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActorNotFound
		}
		return nil, fmt.Errorf("getting actor: %w", err)
	}
	return a, nil
}

// Read returns the caller's own profile. Profiles are private to their owner.
func (s *Service) Read(ctx context.Context, callerID, id string) (*Actor, error) {
	if callerID != id {
		return nil, ErrNotOwner
	}
	return s.Get(ctx, id)
}

// Create creates the caller's self-service profile. A predefined directory
// entry for the same id keeps its role.
func (s *Service) Create(ctx context.Context, callerID string, req ProfileRequest) (*Actor, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, callerID)
	switch {
	case err == nil && !existing.Predefined:
		return nil, ErrProfileExists
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("getting actor: %w", err)
	}

	a := &Actor{ID: callerID, CreatedAt: s.now()}
	if existing != nil {
		a.Role = existing.Role
		if !existing.CreatedAt.IsZero() {
			a.CreatedAt = existing.CreatedAt
		}
	}
	req.apply(a)

	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	s.logger.Info("profile created", "actor_id", a.ID)
	return a, nil
}

// Replace fully replaces the editable fields of a profile. Only the owner may do this.
func (s *Service) Replace(ctx context.Context, callerID, id string, req ProfileRequest) (*Actor, error) {
	if callerID != id {
		return nil, ErrNotOwner
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := &Actor{
		ID:        existing.ID,
		Role:      existing.Role,
		CreatedAt: existing.CreatedAt,
	}
	// Directory entries carry no creation time of their own.
	if next.CreatedAt.IsZero() {
		next.CreatedAt = s.now()
	}
	req.apply(next)

	if existing.Predefined {
		if err := s.repo.Create(ctx, next); err != nil {
			return nil, fmt.Errorf("creating profile: %w", err)
		}
		return next, nil
	}

	updated, err := s.repo.Update(ctx, next)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActorNotFound
		}
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return updated, nil
}

// Ensure returns the actor for id, creating a bare self-service profile on first login.
func (s *Service) Ensure(ctx context.Context, id, displayName string) (*Actor, bool, error) {
	if strings.TrimSpace(id) == "" {
		return nil, false, fmt.Errorf("actor id required: %w", ErrInvalidInput)
	}
	a, err := s.repo.Get(ctx, id)
	if err == nil {
		return a, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("getting actor: %w", err)
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = id
	}
	a = &Actor{
		ID:                  id,
		Name:                name,
		Skills:              []string{},
		DesiredTechnologies: []string{},
		CreatedAt:           s.now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, false, fmt.Errorf("creating actor: %w", err)
	}
	s.logger.Info("actor created on first login", "actor_id", id)
	return a, true, nil
}

// AdoptRole records the role an actor selected. Directory entries are pinned
// to their directory role; self-service actors take the latest selection.
func (s *Service) AdoptRole(ctx context.Context, id string, role Role) (*Actor, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, ErrInvalidInput)
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Predefined {
		if a.Role != role {
			return nil, fmt.Errorf("directory entry %s is a %s: %w", id, a.Role, fault.ErrForbidden)
		}
		return a, nil
	}
	if a.Role == role {
		return a, nil
	}
	a.Role = role
	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("updating role: %w", err)
	}
	return updated, nil
}
