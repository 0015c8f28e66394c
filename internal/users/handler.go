package users

import (
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

// Handler manages user management endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	catalogs authz.CatalogLoader
	guard    authz.Middleware
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, catalogs authz.CatalogLoader, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, catalogs: catalogs, guard: guard, validate: validator.New()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(catalog.PermViewAllUsers))
		r.Get("/", h.listUsers)
		r.Get("/{id}/permissions", h.getUserPermissions)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequirePermission(catalog.PermManageUsers))
		r.Post("/", h.createUser)
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	paging := shared.NewPagination(page, perPage, len(users))

	start := (paging.Page - 1) * paging.PerPage
	if start > len(users) {
		start = len(users)
	}
	end := start + paging.PerPage
	if end > len(users) {
		end = len(users)
	}
	pageItems := users[start:end]
	if pageItems == nil {
		pageItems = []User{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": pageItems, "pagination": paging})
}

type permissionView struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type userPermissionsResponse struct {
	UserID            int64                                `json:"user_id"`
	Role              authz.Role                           `json:"role"`
	Explicit          []string                             `json:"explicit"`
	Effective         []string                             `json:"effective"`
	ByCategory        map[catalog.Category][]permissionView `json:"by_category"`
	PercentageGranted float64                              `json:"percentage_granted"`
}

func (h *Handler) getUserPermissions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "user id must be numeric")
		return
	}
	ua, err := h.service.LoadUserAuthz(r.Context(), id)
	if err != nil {
		h.logger.Error("load user authz failed", slog.Int64("user_id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	cat, err := h.catalogs.Load(r.Context())
	if err != nil {
		h.logger.Error("load catalog failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	resolver := authz.NewResolver(cat)
	effective := resolver.EffectivePermissions(ua)
	if effective == nil {
		effective = []string{}
	}

	byCategory := make(map[catalog.Category][]permissionView)
	for c, keys := range resolver.GroupByCategory(effective) {
		views := make([]permissionView, 0, len(keys))
		for _, key := range keys {
			views = append(views, permissionView{Key: key, Label: cat.LabelOf(key)})
		}
		byCategory[c] = views
	}

	httpx.JSON(w, http.StatusOK, userPermissionsResponse{
		UserID:            ua.UserID,
		Role:              ua.Role,
		Explicit:          ua.ExplicitList(),
		Effective:         effective,
		ByCategory:        byCategory,
		PercentageGranted: resolver.PercentageGranted(ua, cat.Keys()),
	})
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
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
	// Creating a superadmin account is itself a superadmin-only action.
	if role == authz.RoleSuperadmin {
		actor := authz.ActorFromContext(r.Context())
		if actor == nil || actor.Role != authz.RoleSuperadmin {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
	}
	user, err := h.service.CreateUser(r.Context(), req.Email, req.Name, req.Password, role)
	if err != nil {
		h.logger.Error("create user failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}
