// AngelaMos | 2026
// repository.go

package role

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type Repository interface {
	GetByName(ctx context.Context, name string) (*Role, error)
	GetDefault(ctx context.Context) (*Role, error)
	Upsert(ctx context.Context, role *Role) error
	SetDefault(ctx context.Context, name string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetByName(ctx context.Context, name string) (*Role, error) {
	query := `
		SELECT id, name, permissions, is_default
		FROM roles
		WHERE name = $1`

	var role Role
	err := r.db.GetContext(ctx, &role, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get role by name: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get role by name: %w", err)
	}

	return &role, nil
}

func (r *repository) GetDefault(ctx context.Context) (*Role, error) {
	query := `
		SELECT id, name, permissions, is_default
		FROM roles
		WHERE is_default = true
		LIMIT 1`

	var role Role
	err := r.db.GetContext(ctx, &role, query)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get default role: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get default role: %w", err)
	}

	return &role, nil
}

// Upsert inserts role or, when a role with the same name exists, brings its
// permissions and default flag in line with role.
func (r *repository) Upsert(ctx context.Context, role *Role) error {
	query := `
		INSERT INTO roles (name, permissions, is_default)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET permissions = EXCLUDED.permissions,
		    is_default = EXCLUDED.is_default
		RETURNING id`

	err := r.db.GetContext(ctx, &role.ID, query,
		role.Name,
		role.Permissions,
		role.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("upsert role %s: %w", role.Name, err)
	}

	return nil
}

// SetDefault flags name as the default role and clears the flag everywhere
// else in one statement.
func (r *repository) SetDefault(ctx context.Context, name string) error {
	query := `UPDATE roles SET is_default = (name = $1)`

	if _, err := r.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("set default role: %w", err)
	}

	return nil
}
