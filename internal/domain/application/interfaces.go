package application

import (
	"context"

	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/project"
)

// Repository provides persistence for applications.
type Repository interface {
	// Create assigns the next id and stores the application. guard runs against
	// the stored applications under the write lock; its error aborts the insert.
	Create(ctx context.Context, app *Application, guard func([]Application) error) (*Application, error)
	Get(ctx context.Context, id int64) (*Application, error)
	List(ctx context.Context) ([]Application, error)
	ListByAssociate(ctx context.Context, associateID string) ([]Application, error)
	// Update applies patch under the collection's write lock.
	Update(ctx context.Context, id int64, patch func(*Application) error) (*Application, error)
	Delete(ctx context.Context, id int64) (*Application, error)
}

// ProjectStore is the slice of project persistence the workflow needs.
type ProjectStore interface {
	Get(ctx context.Context, id int64) (*project.Project, error)
	ListByManager(ctx context.Context, managerID string) ([]project.Project, error)
	Update(ctx context.Context, id int64, patch func(*project.Project) error) (*project.Project, error)
}

// ActorReader loads the submitting associate.
type ActorReader interface {
	Get(ctx context.Context, id string) (*actor.Actor, error)
}
