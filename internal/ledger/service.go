package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/vantage-admin/vantage/internal/authz"
	"github.com/vantage-admin/vantage/internal/shared"
)

// RepositoryPort defines data access methods for the ledger.
type RepositoryPort interface {
	GetUserRole(ctx context.Context, userID int64) (authz.Role, error)
	ListExplicitPermissions(ctx context.Context, userID int64) ([]string, error)
	GrantPermission(ctx context.Context, userID int64, key string) (bool, error)
	RevokePermission(ctx context.Context, userID int64, key string) (bool, error)
	ResetPermissions(ctx context.Context, userID int64, record shared.AuditLog) (int64, error)
	UpdateUserRole(ctx context.Context, userID int64, role authz.Role) error
}

// AuditRecorder appends audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Notifier fans out permission-change events. Implementations must not block
// the mutation path on delivery.
type Notifier interface {
	NotifyPermissionChange(ctx context.Context, record GrantRevokeRecord)
}

// Service owns all mutations of the explicit permission set and of user
// roles. Authorization rules are enforced here before any write, independent
// of what the UI allowed the operator to click.
type Service struct {
	repo     RepositoryPort
	catalogs authz.CatalogLoader
	audit    AuditRecorder
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a Service. The notifier may be nil.
func NewService(repo RepositoryPort, catalogs authz.CatalogLoader, audit AuditRecorder, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalogs: catalogs, audit: audit, notifier: notifier, logger: logger}
}

// Grant adds an explicit permission to a user. Granting an already-granted
// permission is a no-op success. Only superadmins may grant, and
// superadmin-flagged permissions are never grantable to lower roles.
func (s *Service) Grant(ctx context.Context, actor authz.UserAuthz, userID int64, permission, reason string) (authz.UserAuthz, error) {
	if actor.Role != authz.RoleSuperadmin {
		return authz.UserAuthz{}, shared.ErrForbidden
	}
	cat, err := s.catalogs.Load(ctx)
	if err != nil {
		return authz.UserAuthz{}, err
	}
	if !cat.Contains(permission) {
		return authz.UserAuthz{}, fmt.Errorf("%w: %s", shared.ErrUnknownPermission, permission)
	}
	targetRole, err := s.repo.GetUserRole(ctx, userID)
	if err != nil {
		return authz.UserAuthz{}, err
	}
	if cat.RequiresSuperadmin(permission) && targetRole != authz.RoleSuperadmin {
		return authz.UserAuthz{}, fmt.Errorf("%w: %s requires the superadmin role", shared.ErrForbidden, permission)
	}

	granted, err := s.repo.GrantPermission(ctx, userID, permission)
	if err != nil {
		return authz.UserAuthz{}, err
	}
	if granted {
		s.recordAndNotify(ctx, GrantRevokeRecord{
			UserID:     userID,
			Permission: permission,
			Action:     ActionGrant,
			Reason:     reason,
			ActorID:    actor.UserID,
		})
	}
	return s.loadAuthz(ctx, userID, targetRole)
}

// Revoke removes an explicit permission from a user. Revoking a permission
// that was never explicitly granted is a no-op success; role baselines are
// not individually revocable.
func (s *Service) Revoke(ctx context.Context, actor authz.UserAuthz, userID int64, permission, reason string) (authz.UserAuthz, error) {
	if actor.Role != authz.RoleSuperadmin {
		return authz.UserAuthz{}, shared.ErrForbidden
	}
	cat, err := s.catalogs.Load(ctx)
	if err != nil {
		return authz.UserAuthz{}, err
	}
	if !cat.Contains(permission) {
		return authz.UserAuthz{}, fmt.Errorf("%w: %s", shared.ErrUnknownPermission, permission)
	}
	targetRole, err := s.repo.GetUserRole(ctx, userID)
	if err != nil {
		return authz.UserAuthz{}, err
	}

	revoked, err := s.repo.RevokePermission(ctx, userID, permission)
	if err != nil {
		return authz.UserAuthz{}, err
	}
	if revoked {
		s.recordAndNotify(ctx, GrantRevokeRecord{
			UserID:     userID,
			Permission: permission,
			Action:     ActionRevoke,
			Reason:     reason,
			ActorID:    actor.UserID,
		})
	}
	return s.loadAuthz(ctx, userID, targetRole)
}

// ResetAll clears the user's explicit permission set, appending one summary
// audit record for the whole reset.
func (s *Service) ResetAll(ctx context.Context, actor authz.UserAuthz, userID int64) (authz.UserAuthz, error) {
	if actor.Role != authz.RoleSuperadmin {
		return authz.UserAuthz{}, shared.ErrForbidden
	}
	targetRole, err := s.repo.GetUserRole(ctx, userID)
	if err != nil {
		return authz.UserAuthz{}, err
	}
	_, err = s.repo.ResetPermissions(ctx, userID, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   ActionReset,
		Entity:   EntityUserPermissions,
		EntityID: strconv.FormatInt(userID, 10),
	})
	if err != nil {
		return authz.UserAuthz{}, err
	}
	if s.notifier != nil {
		s.notifier.NotifyPermissionChange(ctx, GrantRevokeRecord{
			UserID:  userID,
			Action:  ActionReset,
			ActorID: actor.UserID,
		})
	}
	return authz.NewUserAuthz(userID, targetRole, nil), nil
}

// ChangeRole assigns a new role to the user. Superadmin-only; the audit
// reason records whether the change was a promotion or a demotion.
func (s *Service) ChangeRole(ctx context.Context, actor authz.UserAuthz, userID int64, newRole authz.Role, reason string) error {
	if !authz.CanAssignRole(actor.Role, newRole) {
		return shared.ErrForbidden
	}
	current, err := s.repo.GetUserRole(ctx, userID)
	if err != nil {
		return err
	}
	if current == newRole {
		return nil
	}
	if err := s.repo.UpdateUserRole(ctx, userID, newRole); err != nil {
		return err
	}

	direction := "promotion"
	if newRole.Rank() < current.Rank() {
		direction = "demotion"
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.UserID,
		Action:   ActionRoleChange,
		Entity:   EntityUser,
		EntityID: strconv.FormatInt(userID, 10),
		Meta: map[string]any{
			"from":      string(current),
			"to":        string(newRole),
			"direction": direction,
			"reason":    reason,
		},
	}); err != nil && s.logger != nil {
		s.logger.Error("record role change audit", slog.Int64("user_id", userID), slog.Any("error", err))
	}
	if s.notifier != nil {
		s.notifier.NotifyPermissionChange(ctx, GrantRevokeRecord{
			UserID:  userID,
			Action:  ActionRoleChange,
			Reason:  reason,
			ActorID: actor.UserID,
		})
	}
	return nil
}

func (s *Service) recordAndNotify(ctx context.Context, record GrantRevokeRecord) {
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  record.ActorID,
		Action:   record.Action,
		Entity:   EntityUserPermissions,
		EntityID: strconv.FormatInt(record.UserID, 10),
		Meta: map[string]any{
			"permission": record.Permission,
			"reason":     record.Reason,
		},
	}); err != nil && s.logger != nil {
		s.logger.Error("record permission audit", slog.Int64("user_id", record.UserID), slog.Any("error", err))
	}
	if s.notifier != nil {
		s.notifier.NotifyPermissionChange(ctx, record)
	}
}

func (s *Service) loadAuthz(ctx context.Context, userID int64, role authz.Role) (authz.UserAuthz, error) {
	explicit, err := s.repo.ListExplicitPermissions(ctx, userID)
	if err != nil {
		return authz.UserAuthz{}, err
	}
	return authz.NewUserAuthz(userID, role, explicit), nil
}
