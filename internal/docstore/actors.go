package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/repository"
)

// Actor document layout. The directory fields are maintained outside the
// service and are never written here.
const (
	UsersDocument        = "users"
	FieldAssociates      = "associates"
	FieldProjectManagers = "projectManagers"
	FieldUserProfiles    = "userProfiles"
)

// ActorRepository stores self-service profiles and reads the predefined directories.
type ActorRepository struct {
	profiles   *Collection[actor.Actor]
	associates *Collection[actor.Actor]
	managers   *Collection[actor.Actor]
}

// NewActorRepository creates an actor repository over store.
func NewActorRepository(store *Store) *ActorRepository {
	schema := func(field string) Schema[actor.Actor] {
		return Schema[actor.Actor]{
			Document: UsersDocument,
			Field:    field,
			Key:      func(a actor.Actor) string { return a.ID },
			Stamp: func(a *actor.Actor, now time.Time) {
				a.UpdatedAt = &now
			},
			Validate: actor.Actor.Validate,
		}
	}
	return &ActorRepository{
		profiles:   NewCollection(store, schema(FieldUserProfiles)),
		associates: NewCollection(store, schema(FieldAssociates)),
		managers:   NewCollection(store, schema(FieldProjectManagers)),
	}
}

// Get looks up self-service profiles first, then the associate and manager directories.
func (r *ActorRepository) Get(ctx context.Context, id string) (*actor.Actor, error) {
	if a, err := r.profiles.GetByID(ctx, id); err == nil {
		return &a, nil
	}
	directories := []struct {
		coll *Collection[actor.Actor]
		role actor.Role
	}{
		{r.associates, actor.RoleAssociate},
		{r.managers, actor.RoleManager},
	}
	for _, dir := range directories {
		a, err := dir.coll.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		a.Role = dir.role
		a.Predefined = true
		return &a, nil
	}
	return nil, repository.ErrNotFound
}

// Create stores a new self-service profile.
func (r *ActorRepository) Create(ctx context.Context, a *actor.Actor) error {
	_, err := r.profiles.Insert(ctx, *a)
	return err
}

// Update replaces a self-service profile.
func (r *ActorRepository) Update(ctx context.Context, a *actor.Actor) (*actor.Actor, error) {
	updated, err := r.profiles.Update(ctx, a.ID, func(rec *actor.Actor) error {
		*rec = *a
		rec.Predefined = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
