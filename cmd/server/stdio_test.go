package main

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

const childEnv = "MOBILITY_STDIO_CHILD"

// TestMain lets the test binary stand in for the server: with childEnv set it
// runs main instead of the tests.
func TestMain(m *testing.M) {
	if os.Getenv(childEnv) == "1" {
		main()
		os.Exit(0)
	}
	os.Exit(m.Run())
}

type stdioSession struct {
	session *sdkmcp.ClientSession
}

func newStdioSession(t *testing.T, extraEnv ...string) *stdioSession {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=^$")
	cmd.Env = append(os.Environ(),
		childEnv+"=1",
		"MOBILITY_TRANSPORT=stdio",
		"MOBILITY_DB_PATH=:memory:",
		"MOBILITY_STORAGE_DIR="+t.TempDir(),
		"MOBILITY_ENV_FILE=",
		"MOBILITY_LOG_LEVEL=error",
	)
	cmd.Env = append(cmd.Env, extraEnv...)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "stdio-test", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
	})
	return &stdioSession{session: session}
}

func (s *stdioSession) call(t *testing.T, name, token string, args map[string]any) (string, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	params := &sdkmcp.CallToolParams{Name: name, Arguments: args}
	if token != "" {
		params.Meta = sdkmcp.Meta{"session_token": token}
	}
	result, err := s.session.CallTool(ctx, params)
	require.NoError(t, err, "CallTool %s", name)
	require.NotEmpty(t, result.Content, "tool %s returned no content", name)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "tool %s returned non-text content", name)
	return text.Text, result.IsError
}

func (s *stdioSession) mustCall(t *testing.T, name, token string, args map[string]any, out any) {
	t.Helper()
	text, isErr := s.call(t, name, token, args)
	require.False(t, isErr, "%s: %s", name, text)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(text), out))
	}
}

func TestStdio_ManagerAndAssociate(t *testing.T) {
	s := newStdioSession(t)

	var login struct {
		Token string `json:"token"`
	}
	s.mustCall(t, "login", "", map[string]any{"actor_id": "pm"}, &login)
	s.mustCall(t, "select_role", login.Token, map[string]any{"role": "manager"}, nil)

	var project struct {
		ID        int64  `json:"id"`
		ManagerID string `json:"managerId"`
	}
	s.mustCall(t, "create_project", login.Token, map[string]any{
		"title":           "Observability",
		"required_skills": []string{"Go", "Prometheus"},
	}, &project)
	require.Equal(t, int64(1), project.ID)
	require.Equal(t, "pm", project.ManagerID)

	var assoc struct {
		Token string `json:"token"`
	}
	s.mustCall(t, "login", "", map[string]any{"actor_id": "sam"}, &assoc)
	s.mustCall(t, "select_role", assoc.Token, map[string]any{"role": "associate"}, nil)
	s.mustCall(t, "update_profile", assoc.Token, map[string]any{"name": "Sam", "skills": []string{"go"}}, nil)

	var submitted struct {
		Status     string `json:"status"`
		MatchScore int    `json:"matchScore"`
	}
	s.mustCall(t, "submit_application", assoc.Token, map[string]any{"project_id": project.ID}, &submitted)
	require.Equal(t, "Pending", submitted.Status)
	require.Equal(t, 65, submitted.MatchScore)
}

func TestStdio_ErrorsCarryCodes(t *testing.T) {
	s := newStdioSession(t)

	text, isErr := s.call(t, "browse_projects", "", map[string]any{})
	require.True(t, isErr)
	require.Contains(t, text, "UNAUTHENTICATED")

	text, isErr = s.call(t, "browse_projects", "not-a-token", map[string]any{})
	require.True(t, isErr)
	require.Contains(t, text, "UNAUTHENTICATED")
}

func TestStdio_ListsResources(t *testing.T) {
	s := newStdioSession(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := s.session.ListResources(ctx, nil)
	require.NoError(t, err)
	uris := make([]string, 0, len(res.Resources))
	for _, r := range res.Resources {
		uris = append(uris, r.URI)
	}
	require.Contains(t, uris, "mobility://docs/matching")
}
