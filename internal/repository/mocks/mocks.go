package mocks

import (
	"context"

	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/application"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ActorRepository is a mock for actor.Repository.
type ActorRepository struct {
	mock.Mock
}

func (m *ActorRepository) Get(ctx context.Context, id string) (*actor.Actor, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*actor.Actor); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActorRepository) Create(ctx context.Context, a *actor.Actor) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *ActorRepository) Update(ctx context.Context, a *actor.Actor) (*actor.Actor, error) {
	args := m.Called(ctx, a)
	if out, ok := args.Get(0).(*actor.Actor); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, proj *project.Project) (*project.Project, error) {
	args := m.Called(ctx, proj)
	if out, ok := args.Get(0).(*project.Project); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Get(ctx context.Context, id int64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context) ([]project.Project, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) ListByManager(ctx context.Context, managerID string) ([]project.Project, error) {
	args := m.Called(ctx, managerID)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Update returns a copy of the configured project with patch applied.
func (m *ProjectRepository) Update(ctx context.Context, id int64, patch func(*project.Project) error) (*project.Project, error) {
	args := m.Called(ctx, id, patch)
	proj, ok := args.Get(0).(*project.Project)
	if !ok || args.Error(1) != nil {
		return nil, args.Error(1)
	}
	next := *proj
	if err := patch(&next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (m *ProjectRepository) Delete(ctx context.Context, id int64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

// ApplicationRepository is a mock for application.Repository. Create runs its
// guard against Stored.
type ApplicationRepository struct {
	mock.Mock
	Stored []application.Application
}

func (m *ApplicationRepository) Create(ctx context.Context, app *application.Application, guard func([]application.Application) error) (*application.Application, error) {
	args := m.Called(ctx, app)
	if guard != nil {
		if err := guard(m.Stored); err != nil {
			return nil, err
		}
	}
	if out, ok := args.Get(0).(*application.Application); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ApplicationRepository) Get(ctx context.Context, id int64) (*application.Application, error) {
	args := m.Called(ctx, id)
	if app, ok := args.Get(0).(*application.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ApplicationRepository) List(ctx context.Context) ([]application.Application, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]application.Application); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ApplicationRepository) ListByAssociate(ctx context.Context, associateID string) ([]application.Application, error) {
	args := m.Called(ctx, associateID)
	if list, ok := args.Get(0).([]application.Application); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Update returns a copy of the configured application with patch applied.
func (m *ApplicationRepository) Update(ctx context.Context, id int64, patch func(*application.Application) error) (*application.Application, error) {
	args := m.Called(ctx, id, patch)
	app, ok := args.Get(0).(*application.Application)
	if !ok || args.Error(1) != nil {
		return nil, args.Error(1)
	}
	next := *app
	if err := patch(&next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (m *ApplicationRepository) Delete(ctx context.Context, id int64) (*application.Application, error) {
	args := m.Called(ctx, id)
	if app, ok := args.Get(0).(*application.Application); ok {
		return app, args.Error(1)
	}
	return nil, args.Error(1)
}

// SessionRepository is a mock for identity.SessionRepository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, sess *identity.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, id string) (*identity.Session, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*identity.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) SetRole(ctx context.Context, id string, role actor.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *SessionRepository) Close(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
