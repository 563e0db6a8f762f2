package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/mobility/internal/transport"
)

type contextKey int

const (
	tokenKey contextKey = iota
)

// WithToken attaches a session token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFrom extracts the session token from context.
func TokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey).(string)
	return v
}

// tokenMiddleware extracts the session token from the Authorization header (HTTP)
// or the session_token metadata field (stdio). Authorization itself happens per
// operation in the gate, so requests without a token pass through.
func tokenMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			var token string

			extra := req.GetExtra()
			if extra != nil && extra.Header != nil {
				token = transport.BearerToken(extra.Header.Get("Authorization"))
			}

			// Some notifications (like "initialized") have nil params.
			if token == "" {
				if params := req.GetParams(); params != nil {
					// GetMeta panics on some typed-nil params.
					func() {
						defer func() { recover() }()
						if meta := params.GetMeta(); meta != nil {
							if t, ok := meta["session_token"].(string); ok {
								token = t
							}
						}
					}()
				}
			}

			if token != "" {
				ctx = WithToken(ctx, token)
			}
			return next(ctx, method, req)
		}
	}
}
