// AngelaMos | 2026
// entity.go

package comment

import (
	"time"
)

type Comment struct {
	ID             string    `db:"id"`
	Body           string    `db:"body"`
	BodyHTML       string    `db:"body_html"`
	Disabled       bool      `db:"disabled"`
	AuthorID       string    `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	PostID         string    `db:"post_id"`
	CreatedAt      time.Time `db:"created_at"`
}

// Redacted returns a copy with its body removed, as shown to viewers who
// cannot moderate a disabled comment.
func (c Comment) Redacted() Comment {
	c.Body = ""
	c.BodyHTML = ""
	return c
}
