// Package app wires repositories and domain services into the MCP surface.
package app

import (
	"fmt"
	"log/slog"

	"github.com/rpggio/mobility/internal/authz"
	"github.com/rpggio/mobility/internal/config"
	"github.com/rpggio/mobility/internal/docstore"
	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/analytics"
	"github.com/rpggio/mobility/internal/domain/application"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/domain/project"
	"github.com/rpggio/mobility/internal/mcp"
	"github.com/rpggio/mobility/internal/sqlite"
)

// OpenMedium returns the document medium selected by cfg.
func OpenMedium(cfg config.StorageConfig, db *sqlite.DB) (docstore.Medium, error) {
	switch cfg.Driver {
	case "sqlite":
		return sqlite.NewDocumentMedium(db), nil
	case "file", "":
		return docstore.NewFileMedium(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewServices builds every domain service over one store. Sessions always live in db.
func NewServices(cfg config.Config, db *sqlite.DB, medium docstore.Medium, logger *slog.Logger) (mcp.Services, error) {
	tokens, err := identity.NewTokenCodec(cfg.Auth.Secret)
	if err != nil {
		return mcp.Services{}, fmt.Errorf("token codec: %w", err)
	}
	policy := application.DuplicatePolicy(cfg.Workflow.DuplicateApplications)
	if !policy.Valid() {
		return mcp.Services{}, fmt.Errorf("unknown duplicate policy %q", policy)
	}

	store := docstore.NewStore(medium, logger)
	actorRepo := docstore.NewActorRepository(store)
	projectRepo := docstore.NewProjectRepository(store)
	applicationRepo := docstore.NewApplicationRepository(store)
	sessionRepo := sqlite.NewSessionRepository(db)

	actorSvc := actor.NewService(actorRepo, logger)
	identitySvc := identity.NewService(sessionRepo, actorSvc, tokens, cfg.Auth.TokenTTL, logger)

	return mcp.Services{
		Identity:     identitySvc,
		Gate:         authz.NewGate(identitySvc, actorSvc, logger),
		Actors:       actorSvc,
		Projects:     project.NewService(projectRepo, actorSvc, logger),
		Applications: application.NewService(applicationRepo, projectRepo, actorSvc, policy, logger),
		Analytics:    analytics.NewService(projectRepo, applicationRepo, actorSvc, logger),
	}, nil
}
