package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrForbidden indicates the actor lacks rights for the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotAuthenticated indicates no resolvable user on the request.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUnknownPermission indicates a permission key absent from the catalog.
	ErrUnknownPermission = errors.New("unknown permission")
	// ErrDuplicateEmail indicates a user with the email already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)

// UserSafeMessage maps internal errors to messages safe to show end users.
// Transport and database failures collapse into a generic retry message.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record does not exist."
	case errors.Is(err, ErrInvalidCredentials):
		return "Email or password is incorrect."
	case errors.Is(err, ErrForbidden):
		return "You do not have permission to perform this action."
	case errors.Is(err, ErrNotAuthenticated):
		return "Please sign in to continue."
	case errors.Is(err, ErrUnknownPermission):
		return "The permission is not recognised."
	case errors.Is(err, ErrDuplicateEmail):
		return "A user with this email already exists."
	default:
		return "Action failed, please try again."
	}
}
