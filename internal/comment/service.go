// AngelaMos | 2026
// service.go

package comment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/markdown"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
	"github.com/carterperez-dev/templates/blog-api/internal/post"
)

type PostLookup interface {
	Get(ctx context.Context, id string) (*post.Post, error)
}

type Service struct {
	repo    Repository
	posts   PostLookup
	perPage int
}

func NewService(repo Repository, posts PostLookup, perPage int) *Service {
	return &Service{repo: repo, posts: posts, perPage: perPage}
}

func (s *Service) PerPage() int {
	return s.perPage
}

func (s *Service) offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * s.perPage
}

func (s *Service) Create(
	ctx context.Context,
	postID, authorID, body string,
) (*Comment, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}

	html, err := markdown.ToHTML(body)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	c := &Comment{
		ID:       uuid.New().String(),
		Body:     body,
		BodyHTML: html,
		AuthorID: authorID,
		PostID:   postID,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, c.ID)
}

func (s *Service) Get(
	ctx context.Context,
	id string,
	viewer permission.Permission,
) (*Comment, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	visible := present(*c, viewer)
	return &visible, nil
}

func (s *Service) List(
	ctx context.Context,
	page int,
	viewer permission.Permission,
) ([]Comment, int, error) {
	comments, total, err := s.repo.List(ctx, s.perPage, s.offset(page))
	if err != nil {
		return nil, 0, err
	}

	return presentAll(comments, viewer), total, nil
}

func (s *Service) ListByPost(
	ctx context.Context,
	postID string,
	page int,
	viewer permission.Permission,
) ([]Comment, int, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, 0, err
	}

	comments, total, err := s.repo.ListByPost(ctx, postID, s.perPage, s.offset(page))
	if err != nil {
		return nil, 0, err
	}

	return presentAll(comments, viewer), total, nil
}

// SetDisabled hides or restores a comment. The caller must hold Moderate.
func (s *Service) SetDisabled(
	ctx context.Context,
	id string,
	disabled bool,
) (*Comment, error) {
	ctx, span := core.StartSpan(ctx, "comment.moderate",
		attribute.String("comment.id", id),
		attribute.Bool("comment.disabled", disabled),
	)
	defer span.End()

	if err := s.repo.SetDisabled(ctx, id, disabled); err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

func present(c Comment, viewer permission.Permission) Comment {
	if c.Disabled && !viewer.Has(permission.Moderate) {
		return c.Redacted()
	}
	return c
}

func presentAll(comments []Comment, viewer permission.Permission) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, present(c, viewer))
	}
	return out
}
