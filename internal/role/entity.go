// AngelaMos | 2026
// entity.go

package role

import (
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

type Role struct {
	ID          int64                 `db:"id"`
	Name        string                `db:"name"`
	Permissions permission.Permission `db:"permissions"`
	IsDefault   bool                  `db:"is_default"`
}

func (r *Role) Has(p permission.Permission) bool {
	return r.Permissions.Has(p)
}
