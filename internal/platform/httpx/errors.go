// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/vantage-admin/vantage/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unrecognised errors never leak their text to the client.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrDuplicateEmail):
		Problem(w, http.StatusConflict, "Duplicate", shared.UserSafeMessage(err))
	case errors.Is(err, shared.ErrUnknownPermission):
		ProblemWithReason(w, http.StatusBadRequest, "Unknown Permission", shared.UserSafeMessage(err), "unknown_permission")
	case errors.Is(err, shared.ErrForbidden):
		ProblemWithReason(w, http.StatusForbidden, "Forbidden", shared.UserSafeMessage(err), "insufficient_role")
	case errors.Is(err, shared.ErrNotAuthenticated):
		ProblemWithReason(w, http.StatusUnauthorized, "Unauthorized", shared.UserSafeMessage(err), "not_authenticated")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", shared.UserSafeMessage(err))
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
	}
}
