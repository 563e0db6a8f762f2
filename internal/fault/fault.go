package fault

import "errors"

// Kind sentinels. Domain packages wrap one of these so callers can classify
// any error with errors.Is.
var (
	// ErrNotFound is returned when a requested record is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a role or ownership check fails.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrStateConflict is returned for disallowed transitions or closed projects.
	ErrStateConflict = errors.New("state conflict")
	// ErrStorage is returned when the persistence medium cannot be written.
	ErrStorage = errors.New("storage failure")
	// ErrUnauthenticated is returned when no valid session accompanies a request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrRoleRequired is returned when a session has not selected a role yet.
	ErrRoleRequired = errors.New("role selection required")
	// ErrProfileIncomplete is returned when an associate must finish their profile first.
	ErrProfileIncomplete = errors.New("profile incomplete")
)

// Kind is a coarse error classification surfaced to callers.
type Kind string

const (
	KindNone              Kind = ""
	KindNotFound          Kind = "NOT_FOUND"
	KindForbidden         Kind = "FORBIDDEN"
	KindValidation        Kind = "VALIDATION_FAILED"
	KindStateConflict     Kind = "STATE_CONFLICT"
	KindStorage           Kind = "STORAGE_FAILURE"
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindRoleRequired      Kind = "ROLE_SELECTION_REQUIRED"
	KindProfileIncomplete Kind = "PROFILE_INCOMPLETE"
	KindInternal          Kind = "INTERNAL"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrUnauthenticated, KindUnauthenticated},
	{ErrRoleRequired, KindRoleRequired},
	{ErrProfileIncomplete, KindProfileIncomplete},
	{ErrForbidden, KindForbidden},
	{ErrNotFound, KindNotFound},
	{ErrValidation, KindValidation},
	{ErrStateConflict, KindStateConflict},
	{ErrStorage, KindStorage},
}

// KindOf classifies err. Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// Recoverable reports whether err is an expected outcome rather than a hard failure.
func Recoverable(err error) bool {
	switch KindOf(err) {
	case KindStorage, KindInternal, KindNone:
		return false
	default:
		return true
	}
}
