package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vantage-admin/vantage/internal/platform/httpx"
	"github.com/vantage-admin/vantage/internal/shared"
)

// Loader provides the current permission catalog.
type Loader interface {
	Load(ctx context.Context) (*Catalog, error)
}

// Handler serves the permission catalog.
type Handler struct {
	logger   *slog.Logger
	catalogs Loader
}

// NewHandler constructs a catalog Handler.
func NewHandler(logger *slog.Logger, catalogs Loader) *Handler {
	return &Handler{logger: logger, catalogs: catalogs}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/all", h.listAll)
}

type catalogResponse struct {
	Permissions []PermissionDescriptor             `json:"permissions"`
	ByCategory  map[Category][]PermissionDescriptor `json:"by_category"`
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	// Any logged-in user may read the catalog; it drives the settings UI.
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}

	cat, err := h.catalogs.Load(r.Context())
	if err != nil {
		h.logger.Error("load permission catalog", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	all := cat.All()
	grouped := make(map[Category][]PermissionDescriptor)
	for _, desc := range all {
		grouped[desc.Category] = append(grouped[desc.Category], desc)
	}
	httpx.JSON(w, http.StatusOK, catalogResponse{Permissions: all, ByCategory: grouped})
}
