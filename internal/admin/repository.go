// AngelaMos | 2026
// repository.go

package admin

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type ContentCounter interface {
	CountContent(ctx context.Context) (*ContentStats, error)
}

type ContentStats struct {
	Users            int `json:"users"             db:"users"`
	UnconfirmedUsers int `json:"unconfirmed_users" db:"unconfirmed_users"`
	Posts            int `json:"posts"             db:"posts"`
	Comments         int `json:"comments"          db:"comments"`
	DisabledComments int `json:"disabled_comments" db:"disabled_comments"`
	Follows          int `json:"follows"           db:"follows"`
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) ContentCounter {
	return &repository{db: db}
}

func (r *repository) CountContent(ctx context.Context) (*ContentStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL) AS users,
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND NOT confirmed) AS unconfirmed_users,
			(SELECT COUNT(*) FROM posts) AS posts,
			(SELECT COUNT(*) FROM comments) AS comments,
			(SELECT COUNT(*) FROM comments WHERE disabled) AS disabled_comments,
			(SELECT COUNT(*) FROM follows) AS follows`

	var stats ContentStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("count content: %w", err)
	}

	return &stats, nil
}
