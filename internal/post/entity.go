// AngelaMos | 2026
// entity.go

package post

import (
	"time"

	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

type Post struct {
	ID             string    `db:"id"`
	Body           string    `db:"body"`
	BodyHTML       string    `db:"body_html"`
	AuthorID       string    `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	CommentCount   int       `db:"comment_count"`
	CreatedAt      time.Time `db:"created_at"`
}

// EditableBy reports whether the actor may change the post: its author,
// or anyone holding Administer.
func (p *Post) EditableBy(actorID string, perms permission.Permission) bool {
	return (actorID != "" && p.AuthorID == actorID) ||
		perms.Has(permission.Administer)
}
