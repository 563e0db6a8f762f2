package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/mobility/internal/fault"
)

// Config contains server configuration.
type Config struct {
	Services Services
	Logger   *slog.Logger
	Version  string
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "mobility",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(tokenMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services), logger)

	return server
}

type registrar struct {
	server  *sdkmcp.Server
	handler *Handler
	logger  *slog.Logger
}

func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	r := registrar{server: server, handler: handler, logger: logger}

	// Session
	addTool[LoginParams](r, "login", "Open a session for an actor id. Returns the session token to pass as _meta.session_token or a Bearer header.")
	addTool[SelectRoleParams](r, "select_role", "Fix the session role (associate or manager). A role can be selected once per session.")
	addTool[NoParams](r, "logout", "Close the current session.")
	addTool[CheckAccessParams](r, "check_access", "Check whether the session may enter an area, and where it is redirected otherwise.")

	// Profiles
	addTool[GetProfileParams](r, "get_profile", "Read an actor profile. Defaults to the caller.")
	addTool[ProfileParams](r, "create_profile", "Create the caller's self-service profile.")
	addTool[ProfileParams](r, "update_profile", "Replace the editable fields of the caller's profile.")

	// Projects
	addTool[NoParams](r, "browse_projects", "List all projects, most recent first.")
	addTool[DiscoverProjectsParams](r, "discover_projects", "Rank open projects by skill match for the calling associate.")
	addTool[NoParams](r, "list_my_projects", "List the calling manager's projects.")
	addTool[ProjectIDParams](r, "get_project", "Read one of the calling manager's projects.")
	addTool[ProjectIDParams](r, "view_project", "View a project as an associate, with its match. Counts a view.")
	addTool[ProjectParams](r, "create_project", "Post a new project owned by the calling manager.")
	addTool[UpdateProjectParams](r, "update_project", "Replace the editable fields of an owned project.")
	addTool[ProjectIDParams](r, "delete_project", "Delete an owned project.")
	addTool[ProjectIDParams](r, "toggle_applications", "Open or close the application window of an owned project.")

	// Applications
	addTool[NoParams](r, "list_applications", "List applications: an associate's own, or those to a manager's projects.")
	addTool[ApplicationIDParams](r, "get_application", "Read one application visible to the caller.")
	addTool[SubmitApplicationParams](r, "submit_application", "Apply to an open project. The match score is frozen at submission.")
	addTool[DecideApplicationParams](r, "decide_application", "Accept or decline a pending application to an owned project.")

	// Analytics
	addTool[NoParams](r, "get_associate_analytics", "Summarize the calling associate's applications and prospects.")
	addTool[NoParams](r, "get_manager_analytics", "Summarize views and applications across the calling manager's projects.")
}

func addTool[In any](r registrar, name, description string) {
	sdkmcp.AddTool(r.server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			params, err := json.Marshal(in)
			if err != nil {
				return nil, nil, err
			}
			out, err := r.handler.Handle(ctx, TokenFrom(ctx), name, params)
			if err != nil {
				return r.errorResult(ctx, name, err), nil, nil
			}
			return jsonResult(out, false), nil, nil
		})
}

func (r registrar) errorResult(ctx context.Context, tool string, err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		r.logger.ErrorContext(ctx, "tool failed", "tool", tool, "error", err)
		apiErr = &APIError{Code: string(fault.KindInternal), Message: "internal error"}
	} else if apiErr.Code == string(fault.KindStorage) {
		r.logger.ErrorContext(ctx, "storage failure", "tool", tool, "error", err)
	}
	return jsonResult(apiErr, true)
}

func jsonResult(v any, isError bool) *sdkmcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{"code":"INTERNAL","message":"unencodable result"}`)
		isError = true
	}
	return &sdkmcp.CallToolResult{
		IsError: isError,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
