package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListPermissions returns all permission descriptors ordered by key.
func (r *Repository) ListPermissions(ctx context.Context) ([]PermissionDescriptor, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, label, category, requires_superadmin FROM permissions ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var perms []PermissionDescriptor
	for rows.Next() {
		var d PermissionDescriptor
		var category string
		if err := rows.Scan(&d.Key, &d.Label, &category, &d.RequiresSuperadmin); err != nil {
			return nil, err
		}
		d.Category = ParseCategory(category)
		perms = append(perms, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// EnsurePermission upserts a descriptor, keeping label and category current.
func (r *Repository) EnsurePermission(ctx context.Context, d PermissionDescriptor) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO permissions (key, label, category, requires_superadmin)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET label = EXCLUDED.label, category = EXCLUDED.category, requires_superadmin = EXCLUDED.requires_superadmin`,
		d.Key, d.Label, string(d.Category), d.RequiresSuperadmin)
	return err
}

// SeedDefaults upserts the built-in descriptors.
func (r *Repository) SeedDefaults(ctx context.Context) error {
	for _, d := range Defaults() {
		if err := r.EnsurePermission(ctx, d); err != nil {
			return err
		}
	}
	return nil
}
