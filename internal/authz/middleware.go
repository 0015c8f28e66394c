package authz

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vantage-admin/vantage/internal/catalog"
	"github.com/vantage-admin/vantage/internal/platform/httpx"
	"github.com/vantage-admin/vantage/internal/shared"
)

// Loader resolves the authorization view of a user.
type Loader interface {
	LoadUserAuthz(ctx context.Context, userID int64) (UserAuthz, error)
}

// CatalogLoader supplies the current permission catalog snapshot.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

type actorContextKey struct{}

// ContextWithActor stores the resolved actor in context.
func ContextWithActor(ctx context.Context, actor *UserAuthz) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the resolved actor, nil when unauthenticated.
func ActorFromContext(ctx context.Context) *UserAuthz {
	actor, _ := ctx.Value(actorContextKey{}).(*UserAuthz)
	return actor
}

// DecisionRecorder counts gate outcomes, typically backed by Prometheus.
type DecisionRecorder interface {
	RecordDecision(allowed bool, reason string)
}

// Middleware wires authorization gates into HTTP handlers.
type Middleware struct {
	Loader    Loader
	Catalogs  CatalogLoader
	Logger    *slog.Logger
	Decisions DecisionRecorder
}

// Authenticate resolves the session user into a UserAuthz and stores it in
// context. Requests without a session user proceed with no actor.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.currentUserID(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		actor, err := m.Loader.LoadUserAuthz(r.Context(), userID)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("load user authz", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), &actor)))
	})
}

// RequirePermission denies the request unless the actor holds the permission.
func (m Middleware) RequirePermission(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			cat, err := m.Catalogs.Load(r.Context())
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("load catalog", slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
				return
			}
			gate := NewGate(NewResolver(cat))
			d := gate.Check(actor, key)
			m.recordDecision(d)
			if !d.Allowed {
				respondDenied(w, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole denies the request unless the actor's role ranks at or above
// the minimum.
func (m Middleware) RequireRole(minimum Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			d := CheckRole(actor, minimum)
			m.recordDecision(d)
			if !d.Allowed {
				respondDenied(w, d)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("parse session user id", slog.String("value", raw))
		}
		return 0, false
	}
	return id, true
}

func (m Middleware) recordDecision(d Decision) {
	if m.Decisions != nil {
		m.Decisions.RecordDecision(d.Allowed, d.Reason)
	}
}

func respondDenied(w http.ResponseWriter, d Decision) {
	status := http.StatusForbidden
	detail := "You do not have permission to perform this action."
	switch d.Reason {
	case ReasonNotAuthenticated:
		status = http.StatusUnauthorized
		detail = "Please sign in to continue."
	case ReasonUnknownPermission:
		detail = "The permission is not recognised."
	}
	httpx.ProblemWithReason(w, status, http.StatusText(status), detail, d.Reason)
}
