package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rpggio/mobility/internal/authz"
	"github.com/rpggio/mobility/internal/domain/actor"
	"github.com/rpggio/mobility/internal/domain/analytics"
	"github.com/rpggio/mobility/internal/domain/application"
	"github.com/rpggio/mobility/internal/domain/identity"
	"github.com/rpggio/mobility/internal/domain/project"
	"github.com/rpggio/mobility/internal/fault"
	"github.com/stretchr/testify/require"
)

type identityStub struct {
	loginFn      func(context.Context, identity.LoginRequest) (*identity.LoginResult, error)
	selectRoleFn func(context.Context, string, actor.Role) (*identity.Session, error)
	logoutFn     func(context.Context, string) error
}

func (s identityStub) Login(ctx context.Context, req identity.LoginRequest) (*identity.LoginResult, error) {
	return s.loginFn(ctx, req)
}
func (s identityStub) SelectRole(ctx context.Context, token string, role actor.Role) (*identity.Session, error) {
	return s.selectRoleFn(ctx, token, role)
}
func (s identityStub) Logout(ctx context.Context, token string) error {
	return s.logoutFn(ctx, token)
}

// gateStub grants every operation to the session stored under a token and
// records what it was asked.
type gateStub struct {
	sessions map[string]*identity.Session
	deny     map[string]error
	asked    *[]string
}

func (g gateStub) Authorize(_ context.Context, token string, op authz.Operation) (*identity.Session, error) {
	if g.asked != nil {
		*g.asked = append(*g.asked, op.Name)
	}
	if err, ok := g.deny[op.Name]; ok {
		return nil, err
	}
	sess, ok := g.sessions[token]
	if !ok {
		return nil, identity.ErrMissingToken
	}
	return sess, nil
}

func (g gateStub) Navigate(_ context.Context, token string, area authz.Area) (authz.Decision, error) {
	sess, ok := g.sessions[token]
	if !ok {
		return authz.Decision{Redirect: authz.RedirectLogin}, nil
	}
	if area == authz.AreaManager && !sess.Is(actor.RoleManager) {
		return authz.Decision{Redirect: authz.RedirectForbidden}, nil
	}
	return authz.Decision{Allowed: true}, nil
}

type actorStub struct {
	readFn    func(context.Context, string, string) (*actor.Actor, error)
	createFn  func(context.Context, string, actor.ProfileRequest) (*actor.Actor, error)
	replaceFn func(context.Context, string, string, actor.ProfileRequest) (*actor.Actor, error)
}

func (a actorStub) Read(ctx context.Context, callerID, id string) (*actor.Actor, error) {
	return a.readFn(ctx, callerID, id)
}
func (a actorStub) Create(ctx context.Context, callerID string, req actor.ProfileRequest) (*actor.Actor, error) {
	return a.createFn(ctx, callerID, req)
}
func (a actorStub) Replace(ctx context.Context, callerID, id string, req actor.ProfileRequest) (*actor.Actor, error) {
	return a.replaceFn(ctx, callerID, id, req)
}

type projectStub struct {
	createFn   func(context.Context, *identity.Session, project.CreateRequest) (*project.Project, error)
	getFn      func(context.Context, *identity.Session, int64) (*project.Project, error)
	viewFn     func(context.Context, *identity.Session, int64) (*project.Listing, error)
	browseFn   func(context.Context) ([]project.Project, error)
	ownedFn    func(context.Context, *identity.Session) ([]project.Project, error)
	discoverFn func(context.Context, *identity.Session, project.DiscoverOptions) ([]project.Listing, error)
	updateFn   func(context.Context, *identity.Session, int64, project.UpdateRequest) (*project.Project, error)
	toggleFn   func(context.Context, *identity.Session, int64) (*project.Project, error)
	deleteFn   func(context.Context, *identity.Session, int64) (*project.Project, error)
}

func (p projectStub) Create(ctx context.Context, sess *identity.Session, req project.CreateRequest) (*project.Project, error) {
	return p.createFn(ctx, sess, req)
}
func (p projectStub) Get(ctx context.Context, sess *identity.Session, id int64) (*project.Project, error) {
	return p.getFn(ctx, sess, id)
}
func (p projectStub) View(ctx context.Context, sess *identity.Session, id int64) (*project.Listing, error) {
	return p.viewFn(ctx, sess, id)
}
func (p projectStub) Browse(ctx context.Context) ([]project.Project, error) {
	return p.browseFn(ctx)
}
func (p projectStub) ListOwned(ctx context.Context, sess *identity.Session) ([]project.Project, error) {
	return p.ownedFn(ctx, sess)
}
func (p projectStub) Discover(ctx context.Context, sess *identity.Session, opts project.DiscoverOptions) ([]project.Listing, error) {
	return p.discoverFn(ctx, sess, opts)
}
func (p projectStub) Update(ctx context.Context, sess *identity.Session, id int64, req project.UpdateRequest) (*project.Project, error) {
	return p.updateFn(ctx, sess, id, req)
}
func (p projectStub) ToggleApplications(ctx context.Context, sess *identity.Session, id int64) (*project.Project, error) {
	return p.toggleFn(ctx, sess, id)
}
func (p projectStub) Delete(ctx context.Context, sess *identity.Session, id int64) (*project.Project, error) {
	return p.deleteFn(ctx, sess, id)
}

type applicationStub struct {
	submitFn func(context.Context, *identity.Session, application.SubmitRequest) (*application.Application, error)
	decideFn func(context.Context, *identity.Session, int64, application.Status) (*application.Application, error)
	listFn   func(context.Context, *identity.Session) ([]application.Application, error)
	getFn    func(context.Context, *identity.Session, int64) (*application.Application, error)
}

func (a applicationStub) Submit(ctx context.Context, sess *identity.Session, req application.SubmitRequest) (*application.Application, error) {
	return a.submitFn(ctx, sess, req)
}
func (a applicationStub) Decide(ctx context.Context, sess *identity.Session, id int64, decision application.Status) (*application.Application, error) {
	return a.decideFn(ctx, sess, id, decision)
}
func (a applicationStub) ListFor(ctx context.Context, sess *identity.Session) ([]application.Application, error) {
	return a.listFn(ctx, sess)
}
func (a applicationStub) Get(ctx context.Context, sess *identity.Session, id int64) (*application.Application, error) {
	return a.getFn(ctx, sess, id)
}

type analyticsStub struct {
	associateFn func(context.Context, *identity.Session) (*analytics.AssociateReport, error)
	managerFn   func(context.Context, *identity.Session) (*analytics.ManagerReport, error)
}

func (a analyticsStub) ForAssociate(ctx context.Context, sess *identity.Session) (*analytics.AssociateReport, error) {
	return a.associateFn(ctx, sess)
}
func (a analyticsStub) ForManager(ctx context.Context, sess *identity.Session) (*analytics.ManagerReport, error) {
	return a.managerFn(ctx, sess)
}

var (
	managerSess   = &identity.Session{ID: "s-m", ActorID: "m1", DisplayName: "Morgan", Role: actor.RoleManager}
	associateSess = &identity.Session{ID: "s-a", ActorID: "a1", DisplayName: "Ari", Role: actor.RoleAssociate}
)

func testGate(asked *[]string) gateStub {
	return gateStub{
		sessions: map[string]*identity.Session{"mgr": managerSess, "assoc": associateSess},
		asked:    asked,
	}
}

func TestHandler_ProjectCommands(t *testing.T) {
	ctx := context.Background()
	var asked []string
	var created project.CreateRequest
	var updatedID int64

	handler := NewHandler(Services{
		Gate: testGate(&asked),
		Projects: projectStub{
			createFn: func(_ context.Context, sess *identity.Session, req project.CreateRequest) (*project.Project, error) {
				created = req
				return &project.Project{ID: 1, Title: req.Title, ManagerID: sess.ActorID}, nil
			},
			browseFn: func(context.Context) ([]project.Project, error) {
				return []project.Project{{ID: 1}}, nil
			},
			ownedFn: func(_ context.Context, sess *identity.Session) ([]project.Project, error) {
				return []project.Project{{ID: 1, ManagerID: sess.ActorID}}, nil
			},
			updateFn: func(_ context.Context, _ *identity.Session, id int64, req project.UpdateRequest) (*project.Project, error) {
				updatedID = id
				return &project.Project{ID: id, Title: req.Title}, nil
			},
			toggleFn: func(_ context.Context, _ *identity.Session, id int64) (*project.Project, error) {
				return &project.Project{ID: id}, nil
			},
		},
	})

	closed := false
	out, err := handler.Handle(ctx, "mgr", "create_project", mustJSON(t, ProjectParams{
		Title:                 "Payments",
		RequiredSkills:        []string{"Go"},
		Urgency:               " HIGH ",
		ApplicationWindowOpen: &closed,
	}))
	require.NoError(t, err)
	require.Equal(t, "m1", out.(*project.Project).ManagerID)
	require.Equal(t, project.UrgencyHigh, created.Urgency)
	require.NotNil(t, created.ApplicationWindowOpen)
	require.False(t, *created.ApplicationWindowOpen)

	_, err = handler.Handle(ctx, "mgr", "browse_projects", nil)
	require.NoError(t, err)
	_, err = handler.Handle(ctx, "mgr", "list_my_projects", nil)
	require.NoError(t, err)
	_, err = handler.Handle(ctx, "mgr", "update_project", mustJSON(t, UpdateProjectParams{ID: 7, Title: "Renamed", RequiredSkills: []string{"Go"}}))
	require.NoError(t, err)
	require.Equal(t, int64(7), updatedID)
	_, err = handler.Handle(ctx, "mgr", "toggle_applications", mustJSON(t, ProjectIDParams{ID: 7}))
	require.NoError(t, err)

	require.Equal(t, []string{
		authz.OpProjectCreate.Name,
		authz.OpProjectBrowse.Name,
		authz.OpProjectListOwned.Name,
		authz.OpProjectUpdate.Name,
		authz.OpProjectToggle.Name,
	}, asked)
}

func TestHandler_AssociateCommands(t *testing.T) {
	ctx := context.Background()
	var opts project.DiscoverOptions
	var submitted application.SubmitRequest

	handler := NewHandler(Services{
		Gate: testGate(nil),
		Projects: projectStub{
			discoverFn: func(_ context.Context, _ *identity.Session, o project.DiscoverOptions) ([]project.Listing, error) {
				opts = o
				return []project.Listing{}, nil
			},
			viewFn: func(_ context.Context, _ *identity.Session, id int64) (*project.Listing, error) {
				return &project.Listing{Project: project.Project{ID: id}}, nil
			},
		},
		Applications: applicationStub{
			submitFn: func(_ context.Context, sess *identity.Session, req application.SubmitRequest) (*application.Application, error) {
				submitted = req
				return &application.Application{ID: 1, ProjectID: req.ProjectID, AssociateID: sess.ActorID}, nil
			},
		},
		Analytics: analyticsStub{
			associateFn: func(_ context.Context, sess *identity.Session) (*analytics.AssociateReport, error) {
				return &analytics.AssociateReport{ActorID: sess.ActorID}, nil
			},
		},
	})

	_, err := handler.Handle(ctx, "assoc", "discover_projects", mustJSON(t, DiscoverProjectsParams{MinTier: "Medium", Limit: 5}))
	require.NoError(t, err)
	require.Equal(t, "medium", string(opts.MinTier))
	require.Equal(t, 5, opts.Limit)

	out, err := handler.Handle(ctx, "assoc", "view_project", mustJSON(t, ProjectIDParams{ID: 3}))
	require.NoError(t, err)
	require.Equal(t, int64(3), out.(*project.Listing).Project.ID)

	out, err = handler.Handle(ctx, "assoc", "submit_application", mustJSON(t, SubmitApplicationParams{ProjectID: 3, CoverText: "hi"}))
	require.NoError(t, err)
	require.Equal(t, "a1", out.(*application.Application).AssociateID)
	require.Equal(t, "hi", submitted.CoverText)

	out, err = handler.Handle(ctx, "assoc", "get_associate_analytics", nil)
	require.NoError(t, err)
	require.Equal(t, "a1", out.(*analytics.AssociateReport).ActorID)
}

func TestHandler_DeniedBeforeDispatch(t *testing.T) {
	ctx := context.Background()
	handler := NewHandler(Services{
		Gate: gateStub{
			sessions: map[string]*identity.Session{"assoc": associateSess},
			deny:     map[string]error{authz.OpProjectCreate.Name: authz.ErrManagerOnly},
		},
		// A nil createFn panics if the handler dispatches past the gate.
		Projects: projectStub{},
	})

	_, err := handler.Handle(ctx, "assoc", "create_project", mustJSON(t, ProjectParams{Title: "x"}))
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	require.Equal(t, string(fault.KindForbidden), apiErr.Code)
	require.NotEmpty(t, apiErr.RecoveryHint)

	_, err = handler.Handle(ctx, "", "list_applications", nil)
	apiErr, ok = err.(*APIError)
	require.True(t, ok)
	require.Equal(t, string(fault.KindUnauthenticated), apiErr.Code)
	require.Equal(t, map[string]string{"redirect": authz.RedirectLogin}, apiErr.Details)
}

func TestHandler_Decide(t *testing.T) {
	ctx := context.Background()
	var got application.Status
	handler := NewHandler(Services{
		Gate: testGate(nil),
		Applications: applicationStub{
			decideFn: func(_ context.Context, _ *identity.Session, id int64, s application.Status) (*application.Application, error) {
				got = s
				if id == 9 {
					return nil, application.ErrAlreadyDecided
				}
				return &application.Application{ID: id, Status: s}, nil
			},
		},
	})

	_, err := handler.Handle(ctx, "mgr", "decide_application", mustJSON(t, DecideApplicationParams{ID: 1, Decision: "Accept"}))
	require.NoError(t, err)
	require.Equal(t, application.StatusAccepted, got)

	_, err = handler.Handle(ctx, "mgr", "decide_application", mustJSON(t, DecideApplicationParams{ID: 9, Decision: "decline"}))
	require.Equal(t, string(fault.KindStateConflict), err.(*APIError).Code)

	_, err = handler.Handle(ctx, "mgr", "decide_application", mustJSON(t, DecideApplicationParams{ID: 1, Decision: "pending"}))
	require.Equal(t, string(fault.KindValidation), err.(*APIError).Code)
}

func TestHandler_SessionCommands(t *testing.T) {
	ctx := context.Background()
	var loggedOut string
	handler := NewHandler(Services{
		Gate: testGate(nil),
		Identity: identityStub{
			loginFn: func(_ context.Context, req identity.LoginRequest) (*identity.LoginResult, error) {
				return &identity.LoginResult{Token: "tok", Session: identity.Session{ActorID: req.ActorID}}, nil
			},
			selectRoleFn: func(_ context.Context, token string, role actor.Role) (*identity.Session, error) {
				if token != "tok" {
					return nil, identity.ErrInvalidToken
				}
				return &identity.Session{ActorID: "a1", Role: role}, nil
			},
			logoutFn: func(_ context.Context, token string) error {
				loggedOut = token
				return nil
			},
		},
		Actors: actorStub{
			readFn: func(_ context.Context, callerID, id string) (*actor.Actor, error) {
				if callerID != id {
					return nil, actor.ErrNotOwner
				}
				return &actor.Actor{ID: id}, nil
			},
			replaceFn: func(_ context.Context, callerID, id string, req actor.ProfileRequest) (*actor.Actor, error) {
				require.Equal(t, callerID, id)
				return &actor.Actor{ID: id, Name: req.Name, Skills: req.Skills}, nil
			},
		},
	})

	out, err := handler.Handle(ctx, "", "login", mustJSON(t, LoginParams{ActorID: "a1"}))
	require.NoError(t, err)
	require.Equal(t, "tok", out.(*identity.LoginResult).Token)

	out, err = handler.Handle(ctx, "tok", "select_role", mustJSON(t, SelectRoleParams{Role: "Associate"}))
	require.NoError(t, err)
	require.Equal(t, actor.RoleAssociate, out.(SelectRoleResponse).Session.Role)

	_, err = handler.Handle(ctx, "tok", "select_role", mustJSON(t, SelectRoleParams{Role: "admin"}))
	require.Equal(t, string(fault.KindValidation), err.(*APIError).Code)

	out, err = handler.Handle(ctx, "assoc", "get_profile", nil)
	require.NoError(t, err)
	require.Equal(t, "a1", out.(*actor.Actor).ID)

	_, err = handler.Handle(ctx, "assoc", "get_profile", mustJSON(t, GetProfileParams{ID: "a2"}))
	require.Equal(t, string(fault.KindForbidden), err.(*APIError).Code)

	out, err = handler.Handle(ctx, "assoc", "update_profile", mustJSON(t, ProfileParams{Name: "Ari", Skills: []string{"Go"}}))
	require.NoError(t, err)
	require.Equal(t, []string{"Go"}, out.(*actor.Actor).Skills)

	out, err = handler.Handle(ctx, "assoc", "check_access", mustJSON(t, CheckAccessParams{Area: "manager"}))
	require.NoError(t, err)
	require.Equal(t, authz.RedirectForbidden, out.(CheckAccessResponse).Redirect)

	_, err = handler.Handle(ctx, "tok", "logout", nil)
	require.NoError(t, err)
	require.Equal(t, "tok", loggedOut)
}

func TestHandler_GateRunsBeforeParamParsing(t *testing.T) {
	ctx := context.Background()
	handler := NewHandler(Services{Gate: testGate(nil)})

	for _, tc := range []struct {
		method string
		params json.RawMessage
	}{
		{"decide_application", json.RawMessage(`{"id":1,"decision":"maybe"}`)},
		{"get_project", json.RawMessage(`{"id":"seven"}`)},
		{"create_project", json.RawMessage(`not json`)},
		{"select_role", json.RawMessage(`{"role":"admin"}`)},
	} {
		_, err := handler.Handle(ctx, "", tc.method, tc.params)
		apiErr, ok := err.(*APIError)
		require.True(t, ok, tc.method)
		require.Equal(t, string(fault.KindUnauthenticated), apiErr.Code, tc.method)
	}
}

func TestHandler_BadInput(t *testing.T) {
	handler := NewHandler(Services{Gate: testGate(nil)})

	_, err := handler.Handle(context.Background(), "mgr", "get_project", json.RawMessage(`{"id":"seven"}`))
	require.Equal(t, string(fault.KindValidation), err.(*APIError).Code)

	_, err = handler.Handle(context.Background(), "mgr", "drop_tables", nil)
	require.Equal(t, CodeMethodNotFound, err.(*APIError).Code)
}

func TestMapError(t *testing.T) {
	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(context.Canceled))

	apiErr := MapError(authz.ErrRoleRequired)
	require.Equal(t, string(fault.KindRoleRequired), apiErr.Code)
	require.Equal(t, map[string]string{"redirect": authz.RedirectSelectRole}, apiErr.Details)

	apiErr = MapError(authz.ErrProfileIncomplete)
	require.Equal(t, map[string]string{"redirect": authz.RedirectProfile}, apiErr.Details)

	wrapped := &APIError{Code: "X"}
	require.Same(t, wrapped, MapError(wrapped))
}

func TestRedact(t *testing.T) {
	require.Equal(t, `{"token":"<redacted>","ok":true}`, redact(`{"token":"abc.def","ok":true}`))
	require.Equal(t, `{"text":"{\"token\":\"<redacted>\"}"}`, redact(`{"text":"{\"token\":\"abc\"}"}`))
	require.Equal(t, `{"_meta":{"session_token":"<redacted>"}}`, redact(`{"_meta":{"session_token":"abc"}}`))
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
