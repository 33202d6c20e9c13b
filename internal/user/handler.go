// AngelaMos | 2026
// handler.go

package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
	perPage   int
}

func NewHandler(service *Service, followersPerPage int) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
		perPage:   followersPerPage,
	}
}

// RegisterRoutes mounts the user endpoints on the gated API router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/users/{userID}", h.GetUser)
	r.Get("/users/{userID}/followers", h.Followers)
	r.Get("/users/{userID}/following", h.Following)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthenticated)
		r.Get("/users/me", h.GetMe)
		r.Put("/users/me", h.UpdateMe)
		r.Delete("/users/me", h.DeleteMe)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePermission(permission.Follow))
		r.Post("/users/{userID}/follow", h.Follow)
		r.Delete("/users/{userID}/follow", h.Unfollow)
	})
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "userID")
	if !core.ValidID(id) {
		core.NotFound(w, "user")
		return "", false
	}
	return id, true
}

func (h *Handler) handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.ValidationError(map[string]string{
			"account": "email or username already registered",
		}))
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "invalid request")
	case errors.Is(err, ErrSelfFollow):
		core.BadRequest(w, ErrSelfFollow.Error())
	default:
		core.InternalServerError(w, err)
	}
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	resp := ToUserResponse(user)

	viewerID := middleware.GetUserID(r.Context())
	if viewerID != "" && viewerID != id {
		following, err := h.service.IsFollowing(r.Context(), viewerID, id)
		if err != nil {
			h.handleError(w, err)
			return
		}
		resp.IsFollowing = &following
	}

	core.OK(w, resp)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(user))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(user))
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		h.handleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Follow(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.handleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.service.Unfollow(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		h.handleError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Followers(w http.ResponseWriter, r *http.Request) {
	h.listFollows(w, r, "followers", h.service.Followers)
}

func (h *Handler) Following(w http.ResponseWriter, r *http.Request) {
	h.listFollows(w, r, "following", h.service.Following)
}

func (h *Handler) listFollows(
	w http.ResponseWriter,
	r *http.Request,
	path string,
	list func(ctx context.Context, id string, page, perPage int) ([]Follow, int, error),
) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	page := core.QueryInt(r, "page", 1)

	follows, total, err := list(r.Context(), id, page, h.perPage)
	if err != nil {
		h.handleError(w, err)
		return
	}

	prev, next := core.PageLinks(userURL(id)+"/"+path, page, h.perPage, total)

	core.OK(w, FollowListResponse{
		Follows: ToFollowResponseList(follows),
		Prev:    prev,
		Next:    next,
		Count:   total,
	})
}

// RegisterAdminRoutes registers administrator-only account management.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(adminOnly)

		r.Get("/", h.ListUsers)
		r.Get("/{userID}", h.GetAccount)
		r.Put("/{userID}", h.UpdateAccount)
		r.Delete("/{userID}", h.DeleteAccount)
	})
}

// ListUsers returns a paginated list of accounts with optional filtering.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	params := ListUsersParams{
		Page:     core.QueryInt(r, "page", 1),
		PageSize: core.QueryInt(r, "page_size", 20),
		Search:   r.URL.Query().Get("search"),
		Role:     r.URL.Query().Get("role"),
	}
	if v := r.URL.Query().Get("confirmed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			params.Confirmed = &b
		}
	}

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	params.Normalize()
	core.Paginated(
		w,
		ToAccountResponseList(users),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(user))
}

// UpdateAccount edits any account's identity, confirmation, role and
// profile fields.
func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req AdminUpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.UpdateAccount(r.Context(), id, req)
	if err != nil {
		h.handleError(w, err)
		return
	}

	core.OK(w, ToAccountResponse(user))
}

// DeleteAccount soft deletes another account. Administrators remove their
// own account through DELETE /users/me.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if id == middleware.GetUserID(r.Context()) {
		core.BadRequest(w, "use /users/me to delete your own account")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleError(w, err)
		return
	}

	core.NoContent(w)
}
