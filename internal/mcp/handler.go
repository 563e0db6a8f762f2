package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/mobility/internal/authz"
	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/analytics"
	"github.com/rpggio/mobility/internal/domain/application"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/domain/match"
	"github.com/rpggio/mobility/internal/domain/project"
	"github.com/rpggio/mobility/internal/fault"
)

// IdentityService defines session operations needed by MCP.
type IdentityService interface {
	Login(ctx context.Context, req identity.LoginRequest) (*identity.LoginResult, error)
	SelectRole(ctx context.Context, token string, role actor.Role) (*identity.Session, error)
	Logout(ctx context.Context, token string) error
}

// Gatekeeper authorizes guarded operations.
type Gatekeeper interface {
	Authorize(ctx context.Context, token string, op authz.Operation) (*identity.Session, error)
	Navigate(ctx context.Context, token string, area authz.Area) (authz.Decision, error)
}

// ActorService defines profile operations needed by MCP.
type ActorService interface {
	Read(ctx context.Context, callerID, id string) (*actor.Actor, error)
	Create(ctx context.Context, callerID string, req actor.ProfileRequest) (*actor.Actor, error)
	Replace(ctx context.Context, callerID, id string, req actor.ProfileRequest) (*actor.Actor, error)
}

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, sess *identity.Session, req project.CreateRequest) (*project.Project, error)
	Get(ctx context.Context, sess *identity.Session, id int64) (*project.Project, error)
	View(ctx context.Context, sess *identity.Session, id int64) (*project.Listing, error)
	Browse(ctx context.Context) ([]project.Project, error)
	ListOwned(ctx context.Context, sess *identity.Session) ([]project.Project, error)
	Discover(ctx context.Context, sess *identity.Session, opts project.DiscoverOptions) ([]project.Listing, error)
	Update(ctx context.Context, sess *identity.Session, id int64, req project.UpdateRequest) (*project.Project, error)
	ToggleApplications(ctx context.Context, sess *identity.Session, id int64) (*project.Project, error)
	Delete(ctx context.Context, sess *identity.Session, id int64) (*project.Project, error)
}

// ApplicationService defines application operations needed by MCP.
type ApplicationService interface {
	Submit(ctx context.Context, sess *identity.Session, req application.SubmitRequest) (*application.Application, error)
	Decide(ctx context.Context, sess *identity.Session, id int64, decision application.Status) (*application.Application, error)
	ListFor(ctx context.Context, sess *identity.Session) ([]application.Application, error)
	Get(ctx context.Context, sess *identity.Session, id int64) (*application.Application, error)
}

// AnalyticsService defines reporting operations needed by MCP.
type AnalyticsService interface {
	ForAssociate(ctx context.Context, sess *identity.Session) (*analytics.AssociateReport, error)
	ForManager(ctx context.Context, sess *identity.Session) (*analytics.ManagerReport, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Identity     IdentityService
	Gate         Gatekeeper
	Actors       ActorService
	Projects     ProjectService
	Applications ApplicationService
	Analytics    AnalyticsService
}

// Handler dispatches tool calls to domain services.
type Handler struct {
	svc Services
}

// NewHandler creates a new MCP handler.
func NewHandler(svc Services) *Handler {
	return &Handler{svc: svc}
}

// Handle dispatches a method on behalf of the session named by token.
func (h *Handler) Handle(ctx context.Context, token, method string, params json.RawMessage) (any, error) {
	switch method {
	case "login":
		var req LoginParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Identity.Login(ctx, identity.LoginRequest{ActorID: req.ActorID, DisplayName: req.DisplayName}))
	case "select_role":
		if token == "" {
			return nil, mapError(identity.ErrMissingToken)
		}
		var req SelectRoleParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		role, err := actor.ParseRole(req.Role)
		if err != nil {
			return nil, mapError(err)
		}
		sess, err := h.svc.Identity.SelectRole(ctx, token, role)
		if err != nil {
			return nil, mapError(err)
		}
		return SelectRoleResponse{Session: *sess}, nil
	case "logout":
		if err := h.svc.Identity.Logout(ctx, token); err != nil {
			return nil, mapError(err)
		}
		return LogoutResponse{LoggedOut: true}, nil
	case "check_access":
		var req CheckAccessParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		decision, err := h.svc.Gate.Navigate(ctx, token, authz.Area(req.Area))
		if err != nil {
			return nil, mapError(err)
		}
		return CheckAccessResponse{Area: req.Area, Decision: decision}, nil

	case "get_profile":
		sess, err := h.authorize(ctx, token, authz.OpProfileRead)
		if err != nil {
			return nil, err
		}
		var req GetProfileParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id := req.ID
		if id == "" {
			id = sess.ActorID
		}
		return wrap(h.svc.Actors.Read(ctx, sess.ActorID, id))
	case "create_profile":
		sess, err := h.authorize(ctx, token, authz.OpProfileWrite)
		if err != nil {
			return nil, err
		}
		var req ProfileParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Actors.Create(ctx, sess.ActorID, req.request()))
	case "update_profile":
		sess, err := h.authorize(ctx, token, authz.OpProfileWrite)
		if err != nil {
			return nil, err
		}
		var req ProfileParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Actors.Replace(ctx, sess.ActorID, sess.ActorID, req.request()))

	case "browse_projects":
		if _, err := h.authorize(ctx, token, authz.OpProjectBrowse); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Browse(ctx))
	case "discover_projects":
		sess, err := h.authorize(ctx, token, authz.OpProjectDiscover)
		if err != nil {
			return nil, err
		}
		var req DiscoverProjectsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Discover(ctx, sess, project.DiscoverOptions{
			IncludeClosed: req.IncludeClosed,
			MinTier:       match.ParseTier(req.MinTier),
			Limit:         req.Limit,
		}))
	case "list_my_projects":
		sess, err := h.authorize(ctx, token, authz.OpProjectListOwned)
		if err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.ListOwned(ctx, sess))
	case "get_project":
		sess, err := h.authorize(ctx, token, authz.OpProjectRead)
		if err != nil {
			return nil, err
		}
		var req ProjectIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Get(ctx, sess, req.ID))
	case "view_project":
		sess, err := h.authorize(ctx, token, authz.OpProjectView)
		if err != nil {
			return nil, err
		}
		var req ProjectIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.View(ctx, sess, req.ID))
	case "create_project":
		sess, err := h.authorize(ctx, token, authz.OpProjectCreate)
		if err != nil {
			return nil, err
		}
		var req ProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Create(ctx, sess, req.request()))
	case "update_project":
		sess, err := h.authorize(ctx, token, authz.OpProjectUpdate)
		if err != nil {
			return nil, err
		}
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Update(ctx, sess, req.ID, req.request()))
	case "delete_project":
		sess, err := h.authorize(ctx, token, authz.OpProjectDelete)
		if err != nil {
			return nil, err
		}
		var req ProjectIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.Delete(ctx, sess, req.ID))
	case "toggle_applications":
		sess, err := h.authorize(ctx, token, authz.OpProjectToggle)
		if err != nil {
			return nil, err
		}
		var req ProjectIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Projects.ToggleApplications(ctx, sess, req.ID))

	case "list_applications":
		sess, err := h.authorize(ctx, token, authz.OpApplicationList)
		if err != nil {
			return nil, err
		}
		return wrap(h.svc.Applications.ListFor(ctx, sess))
	case "get_application":
		sess, err := h.authorize(ctx, token, authz.OpApplicationRead)
		if err != nil {
			return nil, err
		}
		var req ApplicationIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Applications.Get(ctx, sess, req.ID))
	case "submit_application":
		sess, err := h.authorize(ctx, token, authz.OpApplicationSubmit)
		if err != nil {
			return nil, err
		}
		var req SubmitApplicationParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return wrap(h.svc.Applications.Submit(ctx, sess, application.SubmitRequest{
			ProjectID: req.ProjectID,
			CoverText: req.CoverText,
		}))
	case "decide_application":
		sess, err := h.authorize(ctx, token, authz.OpApplicationDecide)
		if err != nil {
			return nil, err
		}
		var req DecideApplicationParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		decision, err := application.ParseDecision(req.Decision)
		if err != nil {
			return nil, mapError(err)
		}
		return wrap(h.svc.Applications.Decide(ctx, sess, req.ID, decision))

	case "get_associate_analytics":
		sess, err := h.authorize(ctx, token, authz.OpAnalyticsAssociate)
		if err != nil {
			return nil, err
		}
		return wrap(h.svc.Analytics.ForAssociate(ctx, sess))
	case "get_manager_analytics":
		sess, err := h.authorize(ctx, token, authz.OpAnalyticsManager)
		if err != nil {
			return nil, err
		}
		return wrap(h.svc.Analytics.ForManager(ctx, sess))
	default:
		return nil, &APIError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method %q", method)}
	}
}

func (h *Handler) authorize(ctx context.Context, token string, op authz.Operation) (*identity.Session, error) {
	sess, err := h.svc.Gate.Authorize(ctx, token, op)
	if err != nil {
		return nil, mapError(err)
	}
	return sess, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return mapError(fmt.Errorf("invalid params: %v: %w", err, fault.ErrValidation))
	}
	return nil
}

// wrap maps the error of a service call, keeping its result otherwise.
func wrap[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, mapError(err)
	}
	return v, nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
