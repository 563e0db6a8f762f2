package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MCPHandler handles method dispatch on behalf of a session token.
type MCPHandler interface {
	Handle(ctx context.Context, token, method string, params json.RawMessage) (any, error)
}

// APIError is a classified handler error.
type APIError interface {
	error
	CodeValue() string
	MessageValue() string
	DetailsValue() any
	RecoveryHintValue() string
}

// Options configures the HTTP surface.
type Options struct {
	// MCP serves the streamable MCP protocol at /mcp when set.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	handler MCPHandler
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler MCPHandler, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))
	r.Use(TokenMiddleware)

	srv := &Server{handler: handler, logger: logger}

	r.Post("/rpc", srv.handleRPC)
	r.Get("/health", srv.handleHealth)
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
	}

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		code := ErrInvalidReq
		if errors.Is(err, errParse) {
			code = ErrParseCode
		}
		WriteError(w, nil, code, err.Error(), nil)
		return
	}

	token, _ := TokenFromContext(r.Context())

	result, err := s.handler.Handle(r.Context(), token, req.Method, req.Params)
	if err != nil {
		s.writeHandlerError(w, r, req, err)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) writeHandlerError(w http.ResponseWriter, r *http.Request, req Request, err error) {
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		s.logger.ErrorContext(r.Context(), "rpc failed", "method", req.Method, "request_id", middleware.GetReqID(r.Context()), "error", err)
		WriteError(w, req.ID, ErrInternal, "internal error", nil)
		return
	}
	WriteError(w, req.ID, rpcCode(apiErr.CodeValue()), apiErr.MessageValue(), ErrorData{
		Code:         apiErr.CodeValue(),
		Details:      apiErr.DetailsValue(),
		RecoveryHint: apiErr.RecoveryHintValue(),
	})
}
