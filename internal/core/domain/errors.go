package domain

import "errors"

// ErrorKind classifies a failure for the transport layer.
type ErrorKind string

const (
	KindValidation      ErrorKind = "Validation"
	KindUnauthorized    ErrorKind = "Unauthorized"
	KindForbidden       ErrorKind = "Forbidden"
	KindNotFound        ErrorKind = "NotFound"
	KindConflict        ErrorKind = "Conflict"
	KindExternalService ErrorKind = "ExternalService"
	KindServerError     ErrorKind = "ServerError"
)

// Error is a failure with a machine-readable kind and a message that is safe
// to show to API callers.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrDuplicateEmail      = newError(KindValidation, "Email already in use")
	ErrInvalidRole         = newError(KindValidation, "role must be one of: User, Admin")
	ErrAdminSignupDisabled = newError(KindValidation, "self-registration with the Admin role is disabled")

	ErrInvalidCredentials = newError(KindUnauthorized, "Invalid credentials")
	ErrUnauthenticated    = newError(KindUnauthorized, "authentication required")
	ErrTokenExpired       = newError(KindUnauthorized, "token expired")
	ErrTokenMalformed     = newError(KindUnauthorized, "token malformed")
	ErrTokenWrongAudience = newError(KindUnauthorized, "token audience mismatch")
	ErrTokenWrongIssuer   = newError(KindUnauthorized, "token issuer mismatch")

	ErrForbidden = newError(KindForbidden, "access forbidden")

	ErrUserNotFound = newError(KindNotFound, "user not found")
	ErrFilmNotFound = newError(KindNotFound, "Movie not found")

	ErrSyncInProgress = newError(KindConflict, "a film sync is already running")

	ErrUpstreamUnavailable = newError(KindExternalService, "Failed to fetch films from the external source")
)

// NewValidationError reports caller input that failed validation.
func NewValidationError(msg string) error {
	return newError(KindValidation, msg)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindServerError when there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindServerError
}
