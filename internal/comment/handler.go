// AngelaMos | 2026
// handler.go

package comment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
	"github.com/carterperez-dev/templates/blog-api/internal/post"
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

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/comments", h.List)
	r.Get("/comments/{commentID}", h.Get)
	r.Get("/posts/{postID}/comments", h.ListByPost)

	r.With(middleware.RequirePermission(permission.Comment)).
		Post("/posts/{postID}/comments", h.Create)

	r.With(middleware.RequirePermission(permission.Moderate)).
		Put("/comments/{commentID}/moderation", h.Moderate)
}

func (h *Handler) handleError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	default:
		core.InternalServerError(w, err)
	}
}

func viewer(r *http.Request) permission.Permission {
	return middleware.GetIdentity(r.Context()).Permissions
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	if !core.ValidID(postID) {
		core.NotFound(w, "post")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, "comment does not have a body")
		return
	}

	c, err := h.service.Create(
		r.Context(),
		postID,
		middleware.GetUserID(r.Context()),
		req.Body,
	)
	if err != nil {
		h.handleError(w, err, "post")
		return
	}

	core.Created(w, URL(c.ID), ToCommentResponse(c))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "commentID")
	if !core.ValidID(id) {
		core.NotFound(w, "comment")
		return
	}

	c, err := h.service.Get(r.Context(), id, viewer(r))
	if err != nil {
		h.handleError(w, err, "comment")
		return
	}

	core.OK(w, ToCommentResponse(c))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.QueryInt(r, "page", 1)

	comments, total, err := h.service.List(r.Context(), page, viewer(r))
	if err != nil {
		h.handleError(w, err, "comment")
		return
	}

	h.writePage(w, core.APIPrefix+"/comments", page, comments, total)
}

func (h *Handler) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")
	if !core.ValidID(postID) {
		core.NotFound(w, "post")
		return
	}

	page := core.QueryInt(r, "page", 1)

	comments, total, err := h.service.ListByPost(r.Context(), postID, page, viewer(r))
	if err != nil {
		h.handleError(w, err, "post")
		return
	}

	h.writePage(w, post.URL(postID)+"/comments", page, comments, total)
}

func (h *Handler) Moderate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "commentID")
	if !core.ValidID(id) {
		core.NotFound(w, "comment")
		return
	}

	var req ModerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.SetDisabled(r.Context(), id, *req.Disabled)
	if err != nil {
		h.handleError(w, err, "comment")
		return
	}

	core.OK(w, ToCommentResponse(c))
}

func (h *Handler) writePage(
	w http.ResponseWriter,
	path string,
	page int,
	comments []Comment,
	total int,
) {
	prev, next := core.PageLinks(path, page, h.service.PerPage(), total)

	core.OK(w, CommentListResponse{
		Comments: ToCommentResponseList(comments),
		Prev:     prev,
		Next:     next,
		Count:    total,
	})
}
