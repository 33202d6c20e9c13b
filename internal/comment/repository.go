// AngelaMos | 2026
// repository.go

package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id string) (*Comment, error)
	SetDisabled(ctx context.Context, id string, disabled bool) error
	List(ctx context.Context, limit, offset int) ([]Comment, int, error)
	ListByPost(ctx context.Context, postID string, limit, offset int) ([]Comment, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectComment = `
		SELECT c.id, c.body, c.body_html, c.disabled, c.author_id,
		       u.username AS author_username, c.post_id, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id`

func (r *repository) Create(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (id, body, body_html, author_id, post_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &comment.CreatedAt, query,
		comment.ID,
		comment.Body,
		comment.BodyHTML,
		comment.AuthorID,
		comment.PostID,
	)
	if err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Comment, error) {
	query := selectComment + `
		WHERE c.id = $1`

	var comment Comment
	err := r.db.GetContext(ctx, &comment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get comment: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return &comment, nil
}

func (r *repository) SetDisabled(ctx context.Context, id string, disabled bool) error {
	query := `UPDATE comments SET disabled = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, disabled)
	if err != nil {
		return fmt.Errorf("set comment disabled: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set comment disabled: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("set comment disabled: %w", core.ErrNotFound)
	}

	return nil
}

// List returns every comment, newest first.
func (r *repository) List(
	ctx context.Context,
	limit, offset int,
) ([]Comment, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM comments`); err != nil {
		return nil, 0, fmt.Errorf("list comments: count: %w", err)
	}

	query := selectComment + `
		ORDER BY c.created_at DESC
		LIMIT $1 OFFSET $2`

	var comments []Comment
	if err := r.db.SelectContext(ctx, &comments, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list comments: %w", err)
	}

	return comments, total, nil
}

// ListByPost returns a post's comments in the order they were written.
func (r *repository) ListByPost(
	ctx context.Context,
	postID string,
	limit, offset int,
) ([]Comment, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM comments WHERE post_id = $1`, postID)
	if err != nil {
		return nil, 0, fmt.Errorf("list post comments: count: %w", err)
	}

	query := selectComment + `
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
		LIMIT $2 OFFSET $3`

	var comments []Comment
	if err := r.db.SelectContext(ctx, &comments, query, postID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list post comments: %w", err)
	}

	return comments, total, nil
}
