package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/vantage-admin/vantage/internal/authz"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, email, name, passwordHash, role string) (User, error)
	ListExplicitPermissions(ctx context.Context, userID int64) ([]string, error)
}

// Service handles user business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns one user.
func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser registers a new account with a bcrypt password hash.
func (s *Service) CreateUser(ctx context.Context, email, name, password string, role authz.Role) (User, error) {
	if !role.Valid() {
		return User{}, fmt.Errorf("users: invalid role %q", role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.repo.CreateUser(ctx, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(name), string(hash), string(role))
}

// LoadUserAuthz assembles the authorization view for one user: role plus
// explicitly granted permissions. Discarded by callers when the view changes;
// nothing is cached here.
func (s *Service) LoadUserAuthz(ctx context.Context, userID int64) (authz.UserAuthz, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return authz.UserAuthz{}, err
	}
	explicit, err := s.repo.ListExplicitPermissions(ctx, userID)
	if err != nil {
		return authz.UserAuthz{}, err
	}
	return authz.NewUserAuthz(user.ID, user.Role, explicit), nil
}
