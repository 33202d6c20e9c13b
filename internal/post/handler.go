// AngelaMos | 2026
// handler.go

package post

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts post endpoints on the gated API router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/posts", h.List)
	r.Get("/posts/{postID}", h.Get)
	r.Get("/users/{userID}/posts", h.ListByAuthor)
	r.Get("/users/{userID}/timeline", h.Timeline)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(permission.Write))
		r.Post("/posts", h.Create)
		r.Put("/posts/{postID}", h.Update)
	})
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "post")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "insufficient permissions")
	default:
		core.InternalServerError(w, err)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*PostRequest, bool) {
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return nil, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, "post does not have a body")
		return nil, false
	}

	return &req, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	post, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req.Body)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.Created(w, URL(post.ID), ToPostResponse(post))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")
	if !core.ValidID(id) {
		core.NotFound(w, "post")
		return
	}

	post, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, ToPostResponse(post))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "postID")
	if !core.ValidID(id) {
		core.NotFound(w, "post")
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(r.Context())

	post, err := h.service.Update(
		r.Context(),
		id,
		identity.UserID,
		identity.Permissions,
		req.Body,
	)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, ToPostResponse(post))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.QueryInt(r, "page", 1)

	posts, total, err := h.service.List(r.Context(), page)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writePage(w, core.APIPrefix+"/posts", page, posts, total)
}

func (h *Handler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	h.listForUser(w, r, "posts", h.service.ListByAuthor)
}

func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	h.listForUser(w, r, "timeline", h.service.Timeline)
}

func (h *Handler) listForUser(
	w http.ResponseWriter,
	r *http.Request,
	path string,
	list func(ctx context.Context, userID string, page int) ([]Post, int, error),
) {
	userID := chi.URLParam(r, "userID")
	if !core.ValidID(userID) {
		core.NotFound(w, "user")
		return
	}

	page := core.QueryInt(r, "page", 1)

	posts, total, err := list(r.Context(), userID, page)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.writePage(w, core.APIPrefix+"/users/"+userID+"/"+path, page, posts, total)
}

func (h *Handler) writePage(
	w http.ResponseWriter,
	path string,
	page int,
	posts []Post,
	total int,
) {
	prev, next := core.PageLinks(path, page, h.service.PerPage(), total)

	core.OK(w, PostListResponse{
		Posts: ToPostResponseList(posts),
		Prev:  prev,
		Next:  next,
		Count: total,
	})
}
