// AngelaMos | 2026
// service.go

package role

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

type Service struct {
	db   *sqlx.DB
	repo Repository
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:   db,
		repo: NewRepository(db),
	}
}

// Seed writes the canonical role table. Running it again rewrites each
// role's permissions by name without adding rows.
func (s *Service) Seed(ctx context.Context) error {
	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		repo := NewRepository(tx)

		var defaultName string
		for _, spec := range permission.Roles {
			r := &Role{
				Name:        spec.Name,
				Permissions: spec.Permissions,
				IsDefault:   spec.Default,
			}
			if err := repo.Upsert(ctx, r); err != nil {
				return err
			}
			if spec.Default {
				defaultName = spec.Name
			}
		}

		if defaultName == "" {
			return fmt.Errorf("seed roles: no default role in canonical table")
		}

		return repo.SetDefault(ctx, defaultName)
	})
}

func (s *Service) Default(ctx context.Context) (*Role, error) {
	return s.repo.GetDefault(ctx)
}

func (s *Service) ByName(ctx context.Context, name string) (*Role, error) {
	return s.repo.GetByName(ctx, name)
}
