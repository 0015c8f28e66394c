package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vantage-admin/vantage/internal/authz"
	"github.com/vantage-admin/vantage/internal/catalog"
	"github.com/vantage-admin/vantage/internal/shared"
)

type stubUsersRepo struct {
	users    map[int64]User
	explicit map[int64][]string
	created  []User
	lastHash string
}

func (s *stubUsersRepo) ListUsers(ctx context.Context) ([]User, error) {
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}

func (s *stubUsersRepo) GetUser(ctx context.Context, id int64) (User, error) {
	u, ok := s.users[id]
	if !ok {
		return User{}, shared.ErrNotFound
	}
	return u, nil
}

func (s *stubUsersRepo) CreateUser(ctx context.Context, email, name, passwordHash, role string) (User, error) {
	u := User{ID: int64(len(s.created) + 100), Email: email, Name: name, Role: authz.Role(role), IsActive: true}
	s.created = append(s.created, User{Email: email, Name: name, Role: authz.Role(role)})
	s.lastHash = passwordHash
	return u, nil
}

func (s *stubUsersRepo) ListExplicitPermissions(ctx context.Context, userID int64) ([]string, error) {
	return s.explicit[userID], nil
}

func TestCreateUserHashesPasswordAndNormalisesEmail(t *testing.T) {
	repo := &stubUsersRepo{}
	svc := NewService(repo)

	user, err := svc.CreateUser(context.Background(), "  Casey@Example.COM ", " Casey ", "s3cret-pass", authz.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, "casey@example.com", user.Email)
	assert.Equal(t, "Casey", user.Name)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.lastHash), []byte("s3cret-pass")))
}

func TestCreateUserRejectsInvalidRole(t *testing.T) {
	svc := NewService(&stubUsersRepo{})

	_, err := svc.CreateUser(context.Background(), "a@b.com", "A", "s3cret-pass", authz.Role("owner"))
	assert.Error(t, err)
}

func TestLoadUserAuthz(t *testing.T) {
	repo := &stubUsersRepo{
		users:    map[int64]User{7: {ID: 7, Role: authz.RoleAdmin}},
		explicit: map[int64][]string{7: {catalog.PermViewAuditLogs}},
	}
	svc := NewService(repo)

	ua, err := svc.LoadUserAuthz(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ua.UserID)
	assert.Equal(t, authz.RoleAdmin, ua.Role)
	assert.True(t, ua.HasExplicit(catalog.PermViewAuditLogs))
}

func TestLoadUserAuthzUnknownUser(t *testing.T) {
	svc := NewService(&stubUsersRepo{})

	_, err := svc.LoadUserAuthz(context.Background(), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
