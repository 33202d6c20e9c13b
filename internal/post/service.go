// AngelaMos | 2026
// service.go

package post

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/markdown"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

type Service struct {
	repo    Repository
	perPage int
}

func NewService(repo Repository, perPage int) *Service {
	return &Service{repo: repo, perPage: perPage}
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
	authorID, body string,
) (*Post, error) {
	html, err := markdown.ToHTML(body)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	post := &Post{
		ID:       uuid.New().String(),
		Body:     body,
		BodyHTML: html,
		AuthorID: authorID,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, post.ID)
}

func (s *Service) Get(ctx context.Context, id string) (*Post, error) {
	return s.repo.GetByID(ctx, id)
}

// Update rewrites the body of a post owned by actorID, or of any post
// when perms include Administer.
func (s *Service) Update(
	ctx context.Context,
	id, actorID string,
	perms permission.Permission,
	body string,
) (*Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !post.EditableBy(actorID, perms) {
		return nil, fmt.Errorf("update post: %w", core.ErrForbidden)
	}

	html, err := markdown.ToHTML(body)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	post.Body = body
	post.BodyHTML = html

	if err := s.repo.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *Service) List(ctx context.Context, page int) ([]Post, int, error) {
	return s.repo.List(ctx, s.perPage, s.offset(page))
}

func (s *Service) ListByAuthor(
	ctx context.Context,
	authorID string,
	page int,
) ([]Post, int, error) {
	return s.repo.ListByAuthor(ctx, authorID, s.perPage, s.offset(page))
}

// Timeline lists posts by the users userID follows, including userID's own.
func (s *Service) Timeline(
	ctx context.Context,
	userID string,
	page int,
) ([]Post, int, error) {
	return s.repo.Timeline(ctx, userID, s.perPage, s.offset(page))
}
