package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `mobility matches associates to internal projects posted by managers.

Core concepts:
- Session: opened by login(actor_id). Pass the returned token as _meta.session_token (stdio) or an Authorization: Bearer header (HTTP).
- Role: each session acts as an associate or a manager. select_role fixes it once; start a new session to switch.
- Profile: associates need at least one skill before discovery and analytics unlock.
- Match: required skills weigh 70%, preferred skills 30%. Tiers are high (>= 0.7), medium (>= 0.4), low (> 0) and none.

Workflow:
1) login, then select_role.
2) Associates: update_profile with skills, discover_projects, view_project, submit_application.
3) Managers: create_project, list_applications, decide_application, toggle_applications.
4) check_access tells you where a denied session should go next.

Docs:
- mobility://docs/roles
- mobility://docs/matching
- mobility://docs/errors
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "mobility://docs/roles",
		Name:        "docs_roles",
		Title:       "Roles and access",
		Description: "Which role may call which tool, and the order access rules are checked in.",
		Content: `# Roles and access

Checks run in order and stop at the first failure:

1. No or invalid token: UNAUTHENTICATED, redirect /login.
2. No role selected: ROLE_SELECTION_REQUIRED, redirect /select-role.
3. Manager tool called by an associate: FORBIDDEN.
4. Associate tool called by a manager: FORBIDDEN.
5. Project owned by another manager: FORBIDDEN.
6. Discovery or analytics without a declared skill: PROFILE_INCOMPLETE, redirect /profile.

| Area      | Tools |
|-----------|-------|
| any role  | browse_projects, get_profile, update_profile, list_applications, get_application |
| associate | discover_projects, view_project, submit_application, get_associate_analytics |
| manager   | list_my_projects, get_project, create_project, update_project, delete_project, toggle_applications, decide_application, get_manager_analytics |

Directory associates and managers may only select their directory role.
`,
	},
	{
		URI:         "mobility://docs/matching",
		Name:        "docs_matching",
		Title:       "How matching works",
		Description: "Skill comparison rules, score formula and ranking order.",
		Content: `# Matching

Two skills match when, ignoring case and surrounding blanks, they are equal or one
contains the other. A single-letter skill only matches itself. Blank skills are ignored.

An associate's skills and desired technologies both count.

    score = 0.7 * required_fraction + 0.3 * preferred_fraction

An empty required or preferred list counts as fully matched.

Discovery ranks open projects by score, newest first on ties. Use min_tier to drop
weak matches and include_closed to see projects no longer accepting applications.

The score stored on an application is frozen when it is submitted.
`,
	},
	{
		URI:         "mobility://docs/errors",
		Name:        "docs_errors",
		Title:       "Error codes",
		Description: "Error codes returned by tools and how to recover.",
		Content: `# Errors

Tool errors come back with isError set and a JSON body {code, message, recovery_hint}.

- UNAUTHENTICATED: login again.
- ROLE_SELECTION_REQUIRED: call select_role.
- PROFILE_INCOMPLETE: add a skill with update_profile.
- FORBIDDEN: wrong role, or not the owning manager.
- NOT_FOUND: unknown id.
- VALIDATION_FAILED: a required field is missing or malformed.
- STATE_CONFLICT: window closed, duplicate application, already decided, or role already selected.
- STORAGE_FAILURE: nothing was written; retry later.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
