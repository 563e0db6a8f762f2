package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ecodeclub/ekit/slice"
	"github.com/rpggio/mobility/internal/authz"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/domain/match"
	"github.com/rpggio/mobility/internal/repository"
)

// Service handles project operations.
type Service struct {
	repo   Repository
	actors ActorReader
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new project service.
func NewService(repo Repository, actors ActorReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, actors: actors, logger: logger, now: time.Now}
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	Title           string
	Description     string
	Department      string
	Location        string
	RequiredSkills  []string
	PreferredSkills []string
	Urgency         Urgency
	// ApplicationWindowOpen defaults to open when nil.
	ApplicationWindowOpen *bool
}

// UpdateRequest replaces a project's editable fields. A nil window flag keeps the current value.
type UpdateRequest = CreateRequest

func (r CreateRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title required: %w", ErrInvalidInput)
	}
	if len(match.Clean(r.RequiredSkills))+len(match.Clean(r.PreferredSkills)) == 0 {
		return fmt.Errorf("at least one skill required: %w", ErrInvalidInput)
	}
	return nil
}

func (r CreateRequest) apply(p *Project) {
	p.Title = strings.TrimSpace(r.Title)
	p.Description = strings.TrimSpace(r.Description)
	p.Department = strings.TrimSpace(r.Department)
	p.Location = strings.TrimSpace(r.Location)
	p.RequiredSkills = match.Clean(r.RequiredSkills)
	p.PreferredSkills = match.Clean(r.PreferredSkills)
	p.Urgency = ParseUrgency(string(r.Urgency))
	p.Deadline = DeadlineFor(p.CreatedAt, p.Urgency)
	if r.ApplicationWindowOpen != nil {
		p.ApplicationWindowOpen = *r.ApplicationWindowOpen
	}
}

// Create posts a new project owned by the calling manager.
func (s *Service) Create(ctx context.Context, sess *identity.Session, req CreateRequest) (*Project, error) {
	if err := authz.RequireManager(sess); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	proj := &Project{
		ManagerID:             sess.ActorID,
		ManagerName:           sess.DisplayName,
		ApplicationWindowOpen: true,
		CreatedAt:             s.now(),
	}
	req.apply(proj)

	created, err := s.repo.Create(ctx, proj)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	s.logger.Info("project created", "project_id", created.ID, "manager_id", created.ManagerID)
	return created, nil
}

// Get reads a project owned by the calling manager.
func (s *Service) Get(ctx context.Context, sess *identity.Session, id int64) (*Project, error) {
	proj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(sess, proj.ManagerID); err != nil {
		return nil, err
	}
	return proj, nil
}

// View returns a project to an associate with its match, counting the view.
func (s *Service) View(ctx context.Context, sess *identity.Session, id int64) (*Listing, error) {
	proj, err := s.repo.Update(ctx, id, func(p *Project) error {
		p.ViewCount++
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("counting view: %w", err)
	}

	skills, err := s.skillsOf(ctx, sess.ActorID)
	if err != nil {
		return nil, err
	}
	res := match.Score(skills, proj.RequiredSkills, proj.PreferredSkills)
	return &Listing{Project: *proj, Match: &res}, nil
}

// Browse lists every project, most recent first.
func (s *Service) Browse(ctx context.Context) ([]Project, error) {
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	sortRecent(projects)
	return projects, nil
}

// ListOwned lists the calling manager's projects, most recent first.
func (s *Service) ListOwned(ctx context.Context, sess *identity.Session) ([]Project, error) {
	projects, err := s.repo.ListByManager(ctx, sess.ActorID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	sortRecent(projects)
	return projects, nil
}

// DiscoverOptions filters a discovery listing.
type DiscoverOptions struct {
	IncludeClosed bool
	MinTier       match.Tier
	Limit         int
}

// Discover ranks projects against the associate's skills and desired technologies.
func (s *Service) Discover(ctx context.Context, sess *identity.Session, opts DiscoverOptions) ([]Listing, error) {
	skills, err := s.skillsOf(ctx, sess.ActorID)
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	minTier := opts.MinTier
	if minTier == "" {
		minTier = match.TierNone
	}

	visible := slice.FindAll(projects, func(p Project) bool {
		return p.ApplicationWindowOpen || opts.IncludeClosed
	})
	scored := slice.Map(visible, func(_ int, p Project) Listing {
		res := match.Score(skills, p.RequiredSkills, p.PreferredSkills)
		return Listing{Project: p, Match: &res}
	})
	listings := slice.FindAll(scored, func(l Listing) bool {
		return l.Match.Tier.AtLeast(minTier)
	})

	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if a.Match.Score == b.Match.Score && a.Project.CreatedAt.Equal(b.Project.CreatedAt) {
			return a.Project.ID > b.Project.ID
		}
		return match.Before(a.Match.Score, a.Project.CreatedAt, b.Match.Score, b.Project.CreatedAt)
	})

	if opts.Limit > 0 && len(listings) > opts.Limit {
		listings = listings[:opts.Limit]
	}
	return listings, nil
}

// Update replaces a project's editable fields, keeping id, owner, creation date and counters.
func (s *Service) Update(ctx context.Context, sess *identity.Session, id int64, req UpdateRequest) (*Project, error) {
	return s.mutateOwned(ctx, sess, id, req.validate, func(p *Project) {
		req.apply(p)
	})
}

// ToggleApplications flips whether the project accepts applications.
func (s *Service) ToggleApplications(ctx context.Context, sess *identity.Session, id int64) (*Project, error) {
	proj, err := s.mutateOwned(ctx, sess, id, nil, func(p *Project) {
		p.ApplicationWindowOpen = !p.ApplicationWindowOpen
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("application window toggled", "project_id", id, "open", proj.ApplicationWindowOpen)
	return proj, nil
}

// Delete removes a project owned by the calling manager.
func (s *Service) Delete(ctx context.Context, sess *identity.Session, id int64) (*Project, error) {
	proj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(sess, proj.ManagerID); err != nil {
		return nil, err
	}
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("deleting project: %w", err)
	}
	s.logger.Info("project deleted", "project_id", id, "manager_id", sess.ActorID)
	return removed, nil
}

// mutateOwned checks ownership before the write and again inside it, so a
// concurrent ownership change cannot slip through. validate runs only once the
// caller is known to own the project.
func (s *Service) mutateOwned(ctx context.Context, sess *identity.Session, id int64, validate func() error, change func(*Project)) (*Project, error) {
	proj, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(sess, proj.ManagerID); err != nil {
		return nil, err
	}
	if validate != nil {
		if err := validate(); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, func(p *Project) error {
		if err := authz.RequireOwner(sess, p.ManagerID); err != nil {
			return err
		}
		change(p)
		p.UpdatedBy = sess.ActorID
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return updated, nil
}

func (s *Service) load(ctx context.Context, id int64) (*Project, error) {
	proj, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return proj, nil
}

func (s *Service) skillsOf(ctx context.Context, actorID string) ([]string, error) {
	a, err := s.actors.Get(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("loading actor skills: %w", err)
	}
	return a.AllSkills(), nil
}

func sortRecent(projects []Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].ID > projects[j].ID
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
}
