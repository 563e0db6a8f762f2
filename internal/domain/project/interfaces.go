package project

import (
	"context"

	"github.com/rpggio/mobility/internal/domain/actor"
)

// Repository provides persistence for projects.
type Repository interface {
	// Create assigns the next id and stores the project.
	Create(ctx context.Context, proj *Project) (*Project, error)
	Get(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context) ([]Project, error)
	ListByManager(ctx context.Context, managerID string) ([]Project, error)
	// Update applies patch under the collection's write lock.
	Update(ctx context.Context, id int64, patch func(*Project) error) (*Project, error)
	Delete(ctx context.Context, id int64) (*Project, error)
}

// ActorReader loads the viewing actor's skills for ranking.
type ActorReader interface {
	Get(ctx context.Context, id string) (*actor.Actor, error)
}
