package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type testError struct {
	code string
}

func (e *testError) Error() string             { return e.code }
func (e *testError) CodeValue() string         { return e.code }
func (e *testError) MessageValue() string      { return "denied" }
func (e *testError) DetailsValue() any         { return nil }
func (e *testError) RecoveryHintValue() string { return "select a role" }

type testHandler struct {
	method string
	token  string
	err    error
}

func (h *testHandler) Handle(_ context.Context, token, method string, _ json.RawMessage) (any, error) {
	h.method = method
	h.token = token
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"method": method}, nil
}

func postRPC(t *testing.T, url, body, token string) Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/rpc", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(handler, Options{}))
	t.Cleanup(server.Close)

	resp := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"browse_projects","id":1}`, "tok")
	require.Nil(t, resp.Error)
	require.Equal(t, "browse_projects", handler.method)
	require.Equal(t, "tok", handler.token)
	require.Equal(t, float64(1), resp.ID)
}

func TestHTTPServer_RPCErrors(t *testing.T) {
	handler := &testHandler{err: fmt.Errorf("wrapped: %w", &testError{code: "ROLE_SELECTION_REQUIRED"})}
	server := httptest.NewServer(NewServer(handler, Options{}))
	t.Cleanup(server.Close)

	resp := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"browse_projects","id":2}`, "")
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrApplication, resp.Error.Code)
	require.Equal(t, "denied", resp.Error.Message)
	data, ok := resp.Error.Data.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "ROLE_SELECTION_REQUIRED", data["code"])
	require.Equal(t, "select a role", data["recovery_hint"])

	handler.err = errors.New("disk on fire")
	resp = postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"browse_projects","id":3}`, "")
	require.Equal(t, ErrInternal, resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)

	resp = postRPC(t, server.URL, `not json`, "")
	require.Equal(t, ErrParseCode, resp.Error.Code)

	resp = postRPC(t, server.URL, `{"jsonrpc":"1.0","method":"x"}`, "")
	require.Equal(t, ErrInvalidReq, resp.Error.Code)
}

func TestHTTPServer_Health(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, Options{}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_MountsMCP(t *testing.T) {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	server := httptest.NewServer(NewServer(&testHandler{}, Options{MCP: mcp}))
	t.Cleanup(server.Close)

	resp, err := http.Post(server.URL+"/mcp", "application/json", bytes.NewBufferString(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusTeapot, resp.StatusCode)
}
