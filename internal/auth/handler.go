// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
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

// RegisterRoutes mounts the identity lifecycle endpoints. They sit behind
// the gate but not the confirmation check so unconfirmed users can
// confirm.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	gate, limiter func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Use(limiter)

		r.Post("/register", h.Register)
		r.Post("/reset", h.RequestPasswordReset)
		r.Post("/reset/confirm", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Use(middleware.RequireAuthenticated)

			r.Post("/confirm", h.Confirm)
			r.Post("/confirm/resend", h.ResendConfirmation)
			r.Post("/change-password", h.ChangePassword)
			r.Post("/change-email", h.RequestEmailChange)
			r.Post("/change-email/confirm", h.ChangeEmail)
		})
	})
}

// RegisterAPIRoutes mounts the auth token endpoint on the gated API router.
func (h *Handler) RegisterAPIRoutes(r chi.Router) {
	r.Get("/token", h.GetToken)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailExists):
			core.JSONError(w, core.DuplicateError("email"))
		case errors.Is(err, ErrUsernameExists):
			core.JSONError(w, core.DuplicateError("username"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.Created(w, core.APIPrefix+"/users/"+user.ID, toAccountResponse(user))
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	var req ConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}

	if identity.Confirmed {
		core.OK(w, MessageResponse{Message: "account already confirmed"})
		return
	}

	ok, err := h.service.Confirm(r.Context(), identity.UserID, req.Token)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if !ok {
		core.BadRequest(w, "the confirmation link is invalid or has expired")
		return
	}

	core.OK(w, MessageResponse{Message: "you have confirmed your account"})
}

func (h *Handler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	if err := h.service.ResendConfirmation(r.Context(), userID); err != nil {
		switch {
		case errors.Is(err, ErrAlreadyConfirmed):
			core.BadRequest(w, "account already confirmed")
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.JSON(w, http.StatusAccepted, MessageResponse{
		Message: "a new confirmation email has been sent",
	})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.ChangePassword(
		r.Context(),
		userID,
		req.OldPassword,
		req.NewPassword,
	)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(w, core.ValidationError(map[string]string{
				"old_password": "invalid password",
			}))
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, MessageResponse{Message: "your password has been updated"})
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.JSON(w, http.StatusAccepted, MessageResponse{
		Message: "an email with instructions to reset your password has been sent",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}

	ok, err := h.service.ResetPassword(
		r.Context(),
		req.Email,
		req.Token,
		req.Password,
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if !ok {
		core.BadRequest(w, "the reset link is invalid or has expired")
		return
	}

	core.OK(w, MessageResponse{Message: "your password has been updated"})
}

func (h *Handler) RequestEmailChange(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ChangeEmailRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.service.RequestEmailChange(
		r.Context(),
		userID,
		req.Email,
		req.Password,
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			core.JSONError(w, core.ValidationError(map[string]string{
				"password": "invalid password",
			}))
		case errors.Is(err, ErrEmailExists):
			core.JSONError(w, core.DuplicateError("email"))
		default:
			core.InternalServerError(w, err)
		}
		return
	}

	core.JSON(w, http.StatusAccepted, MessageResponse{
		Message: "an email with instructions to confirm your new address has been sent",
	})
}

func (h *Handler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req ConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}

	ok, err := h.service.ChangeEmail(r.Context(), userID, req.Token)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	if !ok {
		core.BadRequest(w, "invalid request")
		return
	}

	core.OK(w, MessageResponse{Message: "your email address has been updated"})
}

// GetToken issues an auth token. Callers that authenticated with a token
// cannot mint a fresh one from it.
func (h *Handler) GetToken(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())

	if identity.IsAnonymous() || identity.TokenUsed {
		core.Unauthorized(w, "invalid credentials")
		return
	}

	resp, err := h.service.GenerateAuthToken(identity.UserID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}
