package docstore

import (
	"context"
	"strconv"
	"time"

	"github.com/rpggio/mobility/internal/domain/project"
)

// ProjectsDocument holds the projects array.
const ProjectsDocument = "projects"

// ProjectRepository stores projects in one document.
type ProjectRepository struct {
	coll *Collection[project.Project]
}

// NewProjectRepository creates a project repository over store.
func NewProjectRepository(store *Store) *ProjectRepository {
	return &ProjectRepository{coll: NewCollection(store, Schema[project.Project]{
		Document: ProjectsDocument,
		Field:    "projects",
		Key:      func(p project.Project) string { return idKey(p.ID) },
		Sequence: func(p project.Project) int64 { return p.ID },
		Assign:   func(p *project.Project, id int64) { p.ID = id },
		Stamp: func(p *project.Project, now time.Time) {
			p.UpdatedAt = &now
		},
		Validate: project.Project.Validate,
	})}
}

// Create stores proj under the next id and returns the stored copy.
func (r *ProjectRepository) Create(ctx context.Context, proj *project.Project) (*project.Project, error) {
	created, err := r.coll.Insert(ctx, *proj)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Get retrieves a project by ID.
func (r *ProjectRepository) Get(ctx context.Context, id int64) (*project.Project, error) {
	p, err := r.coll.GetByID(ctx, idKey(id))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns every project in stored order. A corrupt document reads as empty.
func (r *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	return r.coll.All(ctx), nil
}

// ListByManager returns the projects owned by managerID.
func (r *ProjectRepository) ListByManager(ctx context.Context, managerID string) ([]project.Project, error) {
	return r.coll.Get(ctx, func(p project.Project) bool { return p.ManagerID == managerID }), nil
}

// Update applies patch to a project under the document lock.
func (r *ProjectRepository) Update(ctx context.Context, id int64, patch func(*project.Project) error) (*project.Project, error) {
	updated, err := r.coll.Update(ctx, idKey(id), patch)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a project and returns it.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) (*project.Project, error) {
	removed, err := r.coll.Remove(ctx, idKey(id))
	if err != nil {
		return nil, err
	}
	return &removed, nil
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
