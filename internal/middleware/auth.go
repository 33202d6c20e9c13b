// AngelaMos | 2026
// auth.go

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

const IdentityKey contextKey = "identity"

// Identity is the caller resolved for one request. The zero value is not
// anonymous; use Anonymous.
type Identity struct {
	UserID      string
	Email       string
	Username    string
	Confirmed   bool
	Permissions permission.Permission
	TokenUsed   bool
	anonymous   bool
}

func Anonymous() *Identity {
	return &Identity{anonymous: true}
}

func (i *Identity) IsAnonymous() bool {
	return i == nil || i.anonymous
}

// Can reports whether the identity holds every bit of p. Anonymous
// identities hold nothing.
func (i *Identity) Can(p permission.Permission) bool {
	if i.IsAnonymous() {
		return false
	}
	return i.Permissions.Has(p)
}

func (i *Identity) IsAdministrator() bool {
	return i.Can(permission.Administer)
}

// Authenticator resolves Basic credentials into an identity. An empty
// identifier yields the anonymous identity; an empty secret means the
// identifier is an auth token. Rejected credentials return an error.
type Authenticator interface {
	Authenticate(
		ctx context.Context,
		identifier, secret string,
	) (*Identity, error)
}

// Gate attaches the caller's identity to the request context. Requests
// without an Authorization header proceed as anonymous.
func Gate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier, secret := ExtractCredentials(r)

			identity, err := a.Authenticate(r.Context(), identifier, secret)
			if err != nil {
				handleAuthError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireConfirmed rejects signed-in callers who have not confirmed their
// account. Anonymous callers pass through.
func RequireConfirmed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := GetIdentity(r.Context())

		if !identity.IsAnonymous() && !identity.Confirmed {
			core.Forbidden(w, "unconfirmed account")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetIdentity(r.Context()).IsAnonymous() {
			core.Unauthorized(w, "invalid credentials")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RequirePermission(p permission.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r.Context())

			if identity.IsAnonymous() {
				core.Unauthorized(w, "invalid credentials")
				return
			}

			if !identity.Can(p) {
				core.Forbidden(w, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return RequirePermission(permission.Administer)(next)
}

// ExtractCredentials reads Basic credentials, or treats a Bearer token as
// a Basic token login with an empty secret.
func ExtractCredentials(r *http.Request) (string, string) {
	if identifier, secret, ok := r.BasicAuth(); ok {
		return identifier, secret
	}

	return ExtractToken(r), ""
}

func ExtractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func handleAuthError(w http.ResponseWriter, err error) {
	if core.IsAppError(err) {
		core.JSONError(w, err)
		return
	}

	switch {
	case errors.Is(err, core.ErrUnauthorized),
		errors.Is(err, core.ErrTokenExpired),
		errors.Is(err, core.ErrTokenInvalid):
		core.JSONError(w, core.TokenInvalidError())
	default:
		core.InternalServerError(w, err)
	}
}

func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetIdentity returns the request identity, or the anonymous identity when
// none was attached.
func GetIdentity(ctx context.Context) *Identity {
	if identity, ok := ctx.Value(IdentityKey).(*Identity); ok && identity != nil {
		return identity
	}
	return Anonymous()
}

func GetUserID(ctx context.Context) string {
	identity := GetIdentity(ctx)
	if identity.IsAnonymous() {
		return ""
	}
	return identity.UserID
}

func IsAuthenticated(ctx context.Context) bool {
	return !GetIdentity(ctx).IsAnonymous()
}
