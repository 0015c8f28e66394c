package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vantage-admin/vantage/internal/authz"
	"github.com/vantage-admin/vantage/internal/shared"
)

type stubRepo struct {
	user       *User
	sessionIDs []string
	deleted    []string
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	s.sessionIDs = append(s.sessionIDs, id)
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func setupHandler(t *testing.T, repo Repository) (*chi.Mux, *shared.SessionManager) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "vantage_session", time.Hour, false)
	csrf := shared.NewCSRFManager("test-secret")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := NewHandler(logger, NewService(repo), sessions, csrf)
	router := chi.NewRouter()
	router.Use(sessionLifecycle(sessions))
	router.Route("/auth", handler.MountRoutes)
	return router, sessions
}

// sessionLifecycle mirrors the app session middleware: load the session into
// context and commit it right before the first header write. The handlers
// rely on that lifecycle instead of loading sessions themselves.
func sessionLifecycle(sessions *shared.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Load(r.Context(), r)
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			ctx := shared.ContextWithSession(r.Context(), sess)
			wrapped := &committingWriter{ResponseWriter: w, sessions: sessions, sess: sess, ctx: ctx, req: r}
			next.ServeHTTP(wrapped, r.WithContext(ctx))
		})
	}
}

type committingWriter struct {
	http.ResponseWriter
	sessions *shared.SessionManager
	sess     *shared.Session
	ctx      context.Context
	req      *http.Request
	wrote    bool
}

func (w *committingWriter) WriteHeader(code int) {
	if !w.wrote {
		w.wrote = true
		_ = w.sessions.Commit(w.ctx, w.ResponseWriter, w.req, w.sess)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *committingWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

func hashPassword(t *testing.T, plain string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginSuccess(t *testing.T) {
	repo := &stubRepo{user: &User{
		ID:           7,
		Email:        "ops@example.com",
		Name:         "Ops Admin",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         authz.RoleSuperadmin,
		IsActive:     true,
	}}
	router, _ := setupHandler(t, repo)

	body := `{"email":"ops@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UserID    int64  `json:"user_id"`
		Role      string `json:"role"`
		CSRFToken string `json:"csrf_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(7), resp.UserID)
	assert.Equal(t, "superadmin", resp.Role)
	assert.NotEmpty(t, resp.CSRFToken)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "vantage_session", cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	require.Len(t, repo.sessionIDs, 1)
	assert.Equal(t, cookies[0].Value, repo.sessionIDs[0])
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &stubRepo{user: &User{
		ID:           7,
		Email:        "ops@example.com",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         authz.RoleAdmin,
		IsActive:     true,
	}}
	router, _ := setupHandler(t, repo)

	body := `{"email":"ops@example.com","password":"wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, repo.sessionIDs)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := &stubRepo{user: &User{
		ID:           7,
		Email:        "ops@example.com",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         authz.RoleAdmin,
		IsActive:     false,
	}}
	router, _ := setupHandler(t, repo)

	body := `{"email":"ops@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	router, _ := setupHandler(t, &stubRepo{})

	body := `{"email":"not-an-email","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutDestroysSession(t *testing.T) {
	repo := &stubRepo{user: &User{
		ID:           3,
		Email:        "ops@example.com",
		Name:         "Ops",
		PasswordHash: hashPassword(t, "correct-horse"),
		Role:         authz.RoleAdmin,
		IsActive:     true,
	}}
	router, _ := setupHandler(t, repo)

	loginReq := httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"email":"ops@example.com","password":"correct-horse"}`))
	loginReq.Header.Set("Content-Type", "application/json")
	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, loginReq)
	require.Equal(t, http.StatusOK, loginRec.Code)
	cookies := loginRec.Result().Cookies()
	require.Len(t, cookies, 1)

	logoutReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logoutReq.AddCookie(cookies[0])
	logoutRec := httptest.NewRecorder()
	router.ServeHTTP(logoutRec, logoutReq)

	require.Equal(t, http.StatusOK, logoutRec.Code)
	require.Len(t, repo.deleted, 1)
	assert.Equal(t, cookies[0].Value, repo.deleted[0])

	cleared := logoutRec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}
