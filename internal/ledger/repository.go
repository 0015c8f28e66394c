package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-admin/vantage/internal/authz"
	"github.com/vantage-admin/vantage/internal/platform/db"
	"github.com/vantage-admin/vantage/internal/shared"
)

// Repository provides PostgreSQL backed persistence for explicit grants.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetUserRole fetches the current role of a user.
func (r *Repository) GetUserRole(ctx context.Context, userID int64) (authz.Role, error) {
	var role authz.Role
	err := r.pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shared.ErrNotFound
		}
		return "", err
	}
	return role, nil
}

// ListExplicitPermissions returns the user's explicit permission keys.
func (r *Repository) ListExplicitPermissions(ctx context.Context, userID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT permission_key FROM user_permissions WHERE user_id = $1 ORDER BY permission_key`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// GrantPermission inserts an explicit grant. Returns false when the grant
// already existed.
func (r *Repository) GrantPermission(ctx context.Context, userID int64, key string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO user_permissions (user_id, permission_key)
		VALUES ($1, $2)
		ON CONFLICT (user_id, permission_key) DO NOTHING`, userID, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// RevokePermission removes an explicit grant. Returns false when no grant
// existed.
func (r *Repository) RevokePermission(ctx context.Context, userID int64, key string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1 AND permission_key = $2`, userID, key)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ResetPermissions clears all explicit grants for the user and appends the
// summary audit record in the same transaction.
func (r *Repository) ResetPermissions(ctx context.Context, userID int64, record shared.AuditLog) (int64, error) {
	var removed int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		removed = tag.RowsAffected()
		if record.Meta == nil {
			record.Meta = map[string]any{}
		}
		record.Meta["removed"] = removed
		return shared.RecordAudit(ctx, tx, record)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// UpdateUserRole sets a new role for the user.
func (r *Repository) UpdateUserRole(ctx context.Context, userID int64, role authz.Role) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, userID, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
