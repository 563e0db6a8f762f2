package docstore

import (
	"context"
	"time"

	"github.com/rpggio/mobility/internal/domain/application"
)

// ApplicationsDocument holds the applications array.
const ApplicationsDocument = "applications"

// ApplicationRepository stores applications in one document.
type ApplicationRepository struct {
	coll *Collection[application.Application]
}

// NewApplicationRepository creates an application repository over store.
func NewApplicationRepository(store *Store) *ApplicationRepository {
	return &ApplicationRepository{coll: NewCollection(store, Schema[application.Application]{
		Document: ApplicationsDocument,
		Field:    "applications",
		Key:      func(a application.Application) string { return idKey(a.ID) },
		Sequence: func(a application.Application) int64 { return a.ID },
		Assign:   func(a *application.Application, id int64) { a.ID = id },
		Stamp: func(a *application.Application, now time.Time) {
			a.UpdatedAt = &now
		},
		Validate: application.Application.Validate,
	})}
}

// Create stores app under the next id. guard, when set, sees every stored
// application under the write lock and can veto the insert.
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application, guard func([]application.Application) error) (*application.Application, error) {
	created, err := r.coll.InsertIf(ctx, *app, guard)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Get retrieves an application by ID.
func (r *ApplicationRepository) Get(ctx context.Context, id int64) (*application.Application, error) {
	a, err := r.coll.GetByID(ctx, idKey(id))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns every application in stored order.
func (r *ApplicationRepository) List(ctx context.Context) ([]application.Application, error) {
	return r.coll.All(ctx), nil
}

// ListByAssociate returns the applications filed by associateID.
func (r *ApplicationRepository) ListByAssociate(ctx context.Context, associateID string) ([]application.Application, error) {
	return r.coll.Get(ctx, func(a application.Application) bool { return a.AssociateID == associateID }), nil
}

// Update applies patch to an application under the document lock.
func (r *ApplicationRepository) Update(ctx context.Context, id int64, patch func(*application.Application) error) (*application.Application, error) {
	updated, err := r.coll.Update(ctx, idKey(id), patch)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes an application and returns it.
func (r *ApplicationRepository) Delete(ctx context.Context, id int64) (*application.Application, error) {
	removed, err := r.coll.Remove(ctx, idKey(id))
	if err != nil {
		return nil, err
	}
	return &removed, nil
}
