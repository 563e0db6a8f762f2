package application

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
	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/domain/match"
	"github.com/rpggio/mobility/internal/domain/project"
	"github.com/rpggio/mobility/internal/repository"
)

// Service runs the application workflow.
type Service struct {
	repo     Repository
	projects ProjectStore
	actors   ActorReader
	policy   DuplicatePolicy
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new application service. An empty policy means DuplicateRejectActive.
func NewService(repo Repository, projects ProjectStore, actors ActorReader, policy DuplicatePolicy, logger *slog.Logger) *Service {
	if policy == "" {
		policy = DuplicateRejectActive
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		repo:     repo,
		projects: projects,
		actors:   actors,
		policy:   policy,
		logger:   logger,
		now:      time.Now,
	}
}

// SubmitRequest defines application submission inputs.
type SubmitRequest struct {
	ProjectID int64
	CoverText string
}

// Submit files an application for the calling associate. The match score is
// frozen at submission time.
func (s *Service) Submit(ctx context.Context, sess *identity.Session, req SubmitRequest) (*Application, error) {
	if sess == nil {
		return nil, identity.ErrMissingToken
	}
	if !sess.Is(actor.RoleAssociate) {
		return nil, authz.ErrAssociateOnly
	}
	if req.ProjectID <= 0 {
		return nil, fmt.Errorf("project id required: %w", ErrInvalidInput)
	}

	proj, err := s.projects.Get(ctx, req.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	if !proj.ApplicationWindowOpen {
		return nil, ErrWindowClosed
	}

	applicant, err := s.actors.Get(ctx, sess.ActorID)
	if err != nil {
		return nil, fmt.Errorf("loading applicant: %w", err)
	}
	res := match.Score(applicant.AllSkills(), proj.RequiredSkills, proj.PreferredSkills)

	created, err := s.repo.Create(ctx, &Application{
		ProjectID:    proj.ID,
		ProjectTitle: proj.Title,
		AssociateID:  sess.ActorID,
		Associate:    snapshotOf(applicant),
		CoverText:    strings.TrimSpace(req.CoverText),
		MatchScore:   res.Percent,
		Status:       StatusPending,
		SubmittedAt:  s.now(),
	}, s.duplicateGuard(sess.ActorID, proj.ID))
	if err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating application: %w", err)
	}

	_, err = s.projects.Update(ctx, proj.ID, func(p *project.Project) error {
		if !p.ApplicationWindowOpen {
			return ErrWindowClosed
		}
		p.ApplicationCount++
		return nil
	})
	if err != nil {
		if _, rmErr := s.repo.Delete(ctx, created.ID); rmErr != nil {
			s.logger.Error("failed to roll back application", "application_id", created.ID, "error", rmErr)
		}
		switch {
		case errors.Is(err, ErrWindowClosed):
			return nil, ErrWindowClosed
		case errors.Is(err, repository.ErrNotFound):
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("counting application: %w", err)
	}

	s.logger.Info("application submitted",
		"application_id", created.ID,
		"project_id", proj.ID,
		"associate_id", sess.ActorID,
		"match_score", created.MatchScore)
	return created, nil
}

// duplicateGuard enforces the duplicate policy inside the insert, so concurrent
// submissions for one pair cannot both pass it.
func (s *Service) duplicateGuard(associateID string, projectID int64) func([]Application) error {
	if s.policy != DuplicateRejectActive {
		return nil
	}
	return func(stored []Application) error {
		if _, found := slice.Find(stored, func(a Application) bool {
			return a.AssociateID == associateID && a.ProjectID == projectID && a.Active()
		}); found {
			return ErrDuplicate
		}
		return nil
	}
}

// Decide moves a pending application to Accepted or Declined. Only the manager
// owning the target project may decide.
func (s *Service) Decide(ctx context.Context, sess *identity.Session, id int64, decision Status) (*Application, error) {
	if !decision.Terminal() {
		return nil, fmt.Errorf("decision must be Accepted or Declined: %w", ErrInvalidInput)
	}
	if err := authz.RequireManager(sess); err != nil {
		return nil, err
	}

	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireProjectOwner(ctx, sess, app.ProjectID); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, func(a *Application) error {
		if err := ValidateTransition(a.Status, decision); err != nil {
			return err
		}
		a.Status = decision
		a.UpdatedBy = sess.ActorID
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyDecided):
			return nil, err
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("deciding application: %w", err)
	}

	s.logger.Info("application decided", "application_id", id, "status", decision, "manager_id", sess.ActorID)
	return updated, nil
}

// ListFor returns the applications visible to the caller, newest first. Managers
// see applications to their projects; associates see their own.
func (s *Service) ListFor(ctx context.Context, sess *identity.Session) ([]Application, error) {
	if sess == nil {
		return nil, identity.ErrMissingToken
	}

	var (
		apps []Application
		err  error
	)
	switch {
	case sess.Is(actor.RoleManager):
		apps, err = s.listForManager(ctx, sess.ActorID)
	case sess.Is(actor.RoleAssociate):
		apps, err = s.repo.ListByAssociate(ctx, sess.ActorID)
	default:
		return nil, authz.ErrRoleRequired
	}
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}

	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].SubmittedAt.Equal(apps[j].SubmittedAt) {
			return apps[i].ID > apps[j].ID
		}
		return apps[i].SubmittedAt.After(apps[j].SubmittedAt)
	})
	return apps, nil
}

func (s *Service) listForManager(ctx context.Context, managerID string) ([]Application, error) {
	owned, err := s.projects.ListByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	ids := slice.ToMap(owned, func(p project.Project) int64 { return p.ID })
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return slice.FindAll(all, func(a Application) bool {
		_, ok := ids[a.ProjectID]
		return ok
	}), nil
}

// Get reads one application, scoped to the caller's role.
func (s *Service) Get(ctx context.Context, sess *identity.Session, id int64) (*Application, error) {
	if sess == nil {
		return nil, identity.ErrMissingToken
	}
	app, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch {
	case sess.Is(actor.RoleAssociate):
		if app.AssociateID != sess.ActorID {
			return nil, ErrNotApplicant
		}
	case sess.Is(actor.RoleManager):
		if err := s.requireProjectOwner(ctx, sess, app.ProjectID); err != nil {
			return nil, err
		}
	default:
		return nil, authz.ErrRoleRequired
	}
	return app, nil
}

func (s *Service) requireProjectOwner(ctx context.Context, sess *identity.Session, projectID int64) error {
	proj, err := s.projects.Get(ctx, projectID)
	if err != nil {
		// Applications to a deleted project have no owner left to act on them.
		if errors.Is(err, repository.ErrNotFound) {
			return ErrApplicationNotFound
		}
		return fmt.Errorf("getting project: %w", err)
	}
	return authz.RequireOwner(sess, proj.ManagerID)
}

func (s *Service) load(ctx context.Context, id int64) (*Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("getting application: %w", err)
	}
	return app, nil
}

func snapshotOf(a *actor.Actor) Snapshot {
	return Snapshot{
		Name:                a.Name,
		Email:               a.Email,
		Title:               a.Title,
		Department:          a.Department,
		YearsExperience:     a.YearsExperience,
		Skills:              append([]string{}, a.Skills...),
		DesiredTechnologies: append([]string{}, a.DesiredTechnologies...),
	}
}
