package analytics

import (
	"context"

	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/application"
	"github.com/rpggio/mobility/internal/domain/project"
)

// ProjectReader lists projects.
type ProjectReader interface {
	List(ctx context.Context) ([]project.Project, error)
	ListByManager(ctx context.Context, managerID string) ([]project.Project, error)
}

// ApplicationReader lists applications.
type ApplicationReader interface {
	List(ctx context.Context) ([]application.Application, error)
	ListByAssociate(ctx context.Context, associateID string) ([]application.Application, error)
}

// ActorReader loads an actor's skills.
type ActorReader interface {
	Get(ctx context.Context, id string) (*actor.Actor, error)
}
