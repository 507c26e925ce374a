package domain

import "errors"

// Validation failures are wrapped around ErrValidation with a user-facing
// message, e.g. fmt.Errorf("%w: role name must not be empty", ErrValidation).
var ErrValidation = errors.New("validation failed")

// ErrRemote wraps every failure of the remote store so callers can tell a
// rejected write from a bad request.
var ErrRemote = errors.New("remote store failure")

var (
	ErrRoleNotFound      = errors.New("role not found")
	ErrObjectiveNotFound = errors.New("objective not found")
	ErrActivityNotFound  = errors.New("activity not found")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrSessionNotFound    = errors.New("session not found")
	ErrForbidden          = errors.New("access forbidden")
)

// ErrExportFailed is returned when the weekly document could not be produced.
var ErrExportFailed = errors.New("export failed")

// IsNotFound reports whether err is one of the entity not-found errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRoleNotFound) ||
		errors.Is(err, ErrObjectiveNotFound) ||
		errors.Is(err, ErrActivityNotFound)
}
