package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/mobility/internal/authz"
	"github.com/rpggio/mobility/internal/fault"
)

// CodeMethodNotFound is reported for unknown methods.
const CodeMethodNotFound = "METHOD_NOT_FOUND"

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

var recoveryHints = map[fault.Kind]string{
	fault.KindUnauthenticated:   "Call login and pass the returned token",
	fault.KindRoleRequired:      "Call select_role first",
	fault.KindProfileIncomplete: "Add at least one skill with update_profile",
	fault.KindForbidden:         "Use a session with the required role or ownership",
	fault.KindNotFound:          "Check the id",
	fault.KindValidation:        "Fix the listed field and retry",
	fault.KindStateConflict:     "Reload the record; its state changed",
	fault.KindStorage:           "Retry later; nothing was written",
}

// MapError classifies a domain error into an API error. Unclassified errors
// return nil so callers keep the original.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	kind := fault.KindOf(err)
	if kind == fault.KindInternal {
		return nil
	}
	out := &APIError{Code: string(kind), Message: err.Error(), RecoveryHint: recoveryHints[kind]}
	if kind == fault.KindRoleRequired || kind == fault.KindProfileIncomplete || kind == fault.KindUnauthenticated {
		out.Details = map[string]string{"redirect": redirectFor(kind)}
	}
	return out
}

func redirectFor(kind fault.Kind) string {
	switch kind {
	case fault.KindUnauthenticated:
		return authz.RedirectLogin
	case fault.KindRoleRequired:
		return authz.RedirectSelectRole
	default:
		return authz.RedirectProfile
	}
}
