package ledger

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vantage-admin/vantage/internal/authz"
	"github.com/vantage-admin/vantage/internal/catalog"
	"github.com/vantage-admin/vantage/internal/platform/httpx"
	"github.com/vantage-admin/vantage/internal/shared"
)

// Handler manages permission grant/revoke endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    authz.Middleware
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validate: validator.New()}
}

// MountRoutes registers ledger routes under the users prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(catalog.PermManagePermissions))
		r.Post("/{id}/permissions/grant", h.grant)
		r.Post("/{id}/permissions/revoke", h.revoke)
		r.Post("/{id}/permissions/reset", h.reset)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(catalog.PermChangeUserRoles))
		r.Post("/{id}/role", h.changeRole)
	})
}

type mutatePermissionRequest struct {
	Permission string `json:"permission" validate:"required"`
	Reason     string `json:"reason" validate:"required"`
}

type authzResponse struct {
	UserID   int64      `json:"user_id"`
	Role     authz.Role `json:"role"`
	Explicit []string   `json:"explicit"`
}

func toAuthzResponse(ua authz.UserAuthz) authzResponse {
	return authzResponse{UserID: ua.UserID, Role: ua.Role, Explicit: ua.ExplicitList()}
}

type mutateOp func(ctx context.Context, actor authz.UserAuthz, userID int64, permission, reason string) (authz.UserAuthz, error)

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Grant, "grant")
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Revoke, "revoke")
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op mutateOp, name string) {
	actor, userID, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}
	var req mutatePermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ua, err := op(r.Context(), *actor, userID, req.Permission, req.Reason)
	if err != nil {
		h.logger.Error(name+" permission failed",
			slog.Int64("user_id", userID),
			slog.String("permission", req.Permission),
			slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAuthzResponse(ua))
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	actor, userID, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}
	ua, err := h.service.ResetAll(r.Context(), *actor, userID)
	if err != nil {
		h.logger.Error("reset permissions failed", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAuthzResponse(ua))
}

type changeRoleRequest struct {
	Role   string `json:"role" validate:"required"`
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	actor, userID, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}
	var req changeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "role must be user, admin or superadmin")
		return
	}
	if err := h.service.ChangeRole(r.Context(), *actor, userID, role, req.Reason); err != nil {
		h.logger.Error("change role failed", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": userID, "role": role})
}

func (h *Handler) actorAndTarget(w http.ResponseWriter, r *http.Request) (*authz.UserAuthz, int64, bool) {
	actor := authz.ActorFromContext(r.Context())
	if actor == nil {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return nil, 0, false
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "user id must be numeric")
		return nil, 0, false
	}
	return actor, userID, true
}
