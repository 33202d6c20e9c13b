// AngelaMos | 2026
// repository.go

package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type Repository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	Update(ctx context.Context, post *Post) error
	List(ctx context.Context, limit, offset int) ([]Post, int, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]Post, int, error)
	Timeline(ctx context.Context, userID string, limit, offset int) ([]Post, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectPost = `
		SELECT p.id, p.body, p.body_html, p.author_id,
		       u.username AS author_username,
		       (SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
		       p.created_at
		FROM posts p
		JOIN users u ON u.id = p.author_id`

// timelineFilter selects posts by the user's followees and by the user.
const timelineFilter = `
		(p.author_id = $1 OR p.author_id IN (
			SELECT followed_id FROM follows WHERE follower_id = $1
		))`

func (r *repository) Create(ctx context.Context, post *Post) error {
	query := `
		INSERT INTO posts (id, body, body_html, author_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &post.CreatedAt, query,
		post.ID,
		post.Body,
		post.BodyHTML,
		post.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Post, error) {
	query := selectPost + `
		WHERE p.id = $1`

	var post Post
	err := r.db.GetContext(ctx, &post, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get post: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &post, nil
}

func (r *repository) Update(ctx context.Context, post *Post) error {
	query := `
		UPDATE posts
		SET body = $2, body_html = $3
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, post.ID, post.Body, post.BodyHTML)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update post: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	limit, offset int,
) ([]Post, int, error) {
	return r.page(ctx, "list posts", "TRUE", nil, limit, offset)
}

func (r *repository) ListByAuthor(
	ctx context.Context,
	authorID string,
	limit, offset int,
) ([]Post, int, error) {
	return r.page(ctx, "list posts by author", "p.author_id = $1", authorID, limit, offset)
}

func (r *repository) Timeline(
	ctx context.Context,
	userID string,
	limit, offset int,
) ([]Post, int, error) {
	return r.page(ctx, "list timeline", timelineFilter, userID, limit, offset)
}

func (r *repository) page(
	ctx context.Context,
	op, where string,
	arg any,
	limit, offset int,
) ([]Post, int, error) {
	var args []any
	if arg != nil {
		args = append(args, arg)
	}

	countQuery := "SELECT COUNT(*) FROM posts p WHERE " + where

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: count: %w", op, err)
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		ORDER BY p.created_at DESC
		LIMIT $%d OFFSET $%d`,
		selectPost, where, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	var posts []Post
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	return posts, total, nil
}
