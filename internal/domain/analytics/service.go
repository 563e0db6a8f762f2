package analytics

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/ecodeclub/ekit/slice"
	"github.com/rpggio/mobility/internal/authz"
	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/application"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/domain/match"
	"github.com/rpggio/mobility/internal/domain/project"
	"golang.org/x/sync/errgroup"
)

// Service builds read-only analytics views.
type Service struct {
	projects     ProjectReader
	applications ApplicationReader
	actors       ActorReader
	logger       *slog.Logger
}

// NewService creates a new analytics service.
func NewService(projects ProjectReader, applications ApplicationReader, actors ActorReader, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{projects: projects, applications: applications, actors: actors, logger: logger}
}

// ForAssociate reports on the calling associate's applications and open projects.
func (s *Service) ForAssociate(ctx context.Context, sess *identity.Session) (*AssociateReport, error) {
	if sess == nil {
		return nil, identity.ErrMissingToken
	}
	if !sess.Is(actor.RoleAssociate) {
		return nil, authz.ErrAssociateOnly
	}

	var (
		me       *actor.Actor
		mine     []application.Application
		projects []project.Project
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		me, err = s.actors.Get(gctx, sess.ActorID)
		if err != nil {
			return fmt.Errorf("loading actor: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		mine, err = s.applications.ListByAssociate(gctx, sess.ActorID)
		if err != nil {
			return fmt.Errorf("listing applications: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		projects, err = s.projects.List(gctx)
		if err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &AssociateReport{
		ActorID: sess.ActorID,
		OpenByTier: map[match.Tier]int{
			match.TierHigh:   0,
			match.TierMedium: 0,
			match.TierLow:    0,
			match.TierNone:   0,
		},
	}
	for _, a := range mine {
		report.Applications.Add(a.Status)
	}
	report.AverageMatchScore = averageScore(mine)

	skills := me.AllSkills()
	open := slice.FindAll(projects, func(p project.Project) bool { return p.ApplicationWindowOpen })
	report.OpenProjects = len(open)
	for _, p := range open {
		report.OpenByTier[match.Score(skills, p.RequiredSkills, p.PreferredSkills).Tier]++
	}
	return report, nil
}

// ForManager reports on the calling manager's projects.
func (s *Service) ForManager(ctx context.Context, sess *identity.Session) (*ManagerReport, error) {
	if err := authz.RequireManager(sess); err != nil {
		return nil, err
	}

	var (
		owned []project.Project
		all   []application.Application
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owned, err = s.projects.ListByManager(gctx, sess.ActorID)
		if err != nil {
			return fmt.Errorf("listing projects: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		all, err = s.applications.List(gctx)
		if err != nil {
			return fmt.Errorf("listing applications: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byProject := make(map[int64][]application.Application, len(owned))
	for _, a := range all {
		byProject[a.ProjectID] = append(byProject[a.ProjectID], a)
	}

	report := &ManagerReport{ManagerID: sess.ActorID}
	report.Projects = slice.Map(owned, func(_ int, p project.Project) ProjectStats {
		apps := byProject[p.ID]
		stats := ProjectStats{
			ProjectID:             p.ID,
			Title:                 p.Title,
			ApplicationWindowOpen: p.ApplicationWindowOpen,
			Views:                 p.ViewCount,
			AverageMatchScore:     averageScore(apps),
		}
		for _, a := range apps {
			stats.Applications.Add(a.Status)
		}
		return stats
	})
	for _, st := range report.Projects {
		if st.ApplicationWindowOpen {
			report.OpenProjects++
		}
		report.TotalViews += st.Views
		report.Applications.Pending += st.Applications.Pending
		report.Applications.Accepted += st.Applications.Accepted
		report.Applications.Declined += st.Applications.Declined
	}
	return report, nil
}

func averageScore(apps []application.Application) float64 {
	if len(apps) == 0 {
		return 0
	}
	var sum int
	for _, a := range apps {
		sum += a.MatchScore
	}
	return math.Round(float64(sum)/float64(len(apps))*100) / 100
}
