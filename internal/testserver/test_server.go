package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/mobility/internal/app"
	"github.com/rpggio/mobility/internal/config"
	"github.com/rpggio/mobility/internal/docstore"
	"github.com/rpggio/mobility/internal/mcp"
	"github.com/rpggio/mobility/internal/sqlite"
	"github.com/rpggio/mobility/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer is a fully wired HTTP server over an in-memory database.
type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Dir    string
}

// Option adjusts the configuration before the server is built.
type Option func(*config.Config)

// WithStorage selects the document driver ("file" or "sqlite").
func WithStorage(driver string) Option {
	return func(cfg *config.Config) { cfg.Storage.Driver = driver }
}

// WithDuplicatePolicy sets the duplicate application policy.
func WithDuplicatePolicy(policy string) Option {
	return func(cfg *config.Config) { cfg.Workflow.DuplicateApplications = policy }
}

// New starts a server. Directory documents (users.json) can be seeded with Seed
// before the first request.
func New(t *testing.T, opts ...Option) *TestServer {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.Dir = dir
	cfg.Auth.Secret = "test-secret"
	for _, opt := range opts {
		opt(&cfg)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	medium, err := app.OpenMedium(cfg.Storage, db)
	require.NoError(t, err)

	services, err := app.NewServices(cfg, db, medium, nil)
	require.NoError(t, err)

	mcpServer := mcp.NewServer(mcp.Config{Services: services})
	mcpHTTP := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)

	server := httptest.NewServer(transport.NewServer(mcp.NewHandler(services), transport.Options{MCP: mcpHTTP}))

	ts := &TestServer{Server: server, DB: db, Dir: dir}
	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})
	return ts
}

// Seed writes a raw document through the file medium. Only servers using the
// file driver see it.
func (ts *TestServer) Seed(t *testing.T, name string, doc any) {
	t.Helper()
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	medium, err := docstore.NewFileMedium(ts.Dir)
	require.NoError(t, err)
	require.NoError(t, medium.Save(context.Background(), name, data))
}

// RPCResponse is a decoded JSON-RPC reply.
type RPCResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			Code         string            `json:"code"`
			Details      map[string]string `json:"details"`
			RecoveryHint string            `json:"recovery_hint"`
		} `json:"data"`
	} `json:"error"`
}

// Call posts a JSON-RPC request to /rpc with token as the bearer credential.
func (ts *TestServer) Call(t *testing.T, token, method string, params any) RPCResponse {
	t.Helper()

	body, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// MustCall is Call that fails the test on an error reply and decodes the result into out.
func (ts *TestServer) MustCall(t *testing.T, token, method string, params, out any) {
	t.Helper()
	resp := ts.Call(t, token, method, params)
	require.Nil(t, resp.Error, "%s: %+v", method, resp.Error)
	if out != nil {
		require.NoError(t, json.Unmarshal(resp.Result, out))
	}
}

// Login opens a session for actorID and selects role, returning the token.
func (ts *TestServer) Login(t *testing.T, actorID, role string) string {
	t.Helper()
	var login struct {
		Token string `json:"token"`
	}
	ts.MustCall(t, "", "login", map[string]any{"actor_id": actorID}, &login)
	require.NotEmpty(t, login.Token)
	if role != "" {
		ts.MustCall(t, login.Token, "select_role", map[string]any{"role": role}, nil)
	}
	return login.Token
}
