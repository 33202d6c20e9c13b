// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/core"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

type stubAuthenticator struct {
	identifier string
	secret     string
	identity   *Identity
	err        error
	calls      int
}

func (s *stubAuthenticator) Authenticate(
	_ context.Context,
	identifier, secret string,
) (*Identity, error) {
	s.calls++
	s.identifier = identifier
	s.secret = secret
	if s.err != nil {
		return nil, s.err
	}
	if identifier == "" {
		return Anonymous(), nil
	}
	return s.identity, nil
}

func captureIdentity(got **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestGateCredentialForms(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*http.Request)
		identifier string
		secret     string
	}{
		{
			name:  "no header",
			setup: func(*http.Request) {},
		},
		{
			name:       "basic password",
			setup:      func(r *http.Request) { r.SetBasicAuth("bin@example.com", "cat") },
			identifier: "bin@example.com",
			secret:     "cat",
		},
		{
			name:       "basic token",
			setup:      func(r *http.Request) { r.SetBasicAuth("tok.en.value", "") },
			identifier: "tok.en.value",
		},
		{
			name:       "bearer token",
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok.en.value") },
			identifier: "tok.en.value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &stubAuthenticator{identity: &Identity{UserID: "u1", Confirmed: true}}

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)

			var got *Identity
			rec := httptest.NewRecorder()
			Gate(auth)(captureIdentity(&got)).ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.identifier, auth.identifier)
			assert.Equal(t, tt.secret, auth.secret)
			assert.Equal(t, tt.identifier == "", got.IsAnonymous())
		})
	}
}

func TestGateRejectsBadCredentials(t *testing.T) {
	auth := &stubAuthenticator{err: fmt.Errorf("authenticate: %w", core.ErrUnauthorized)}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("bin@example.com", "dog")

	var got *Identity
	rec := httptest.NewRecorder()
	Gate(auth)(captureIdentity(&got)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
	assert.Nil(t, got)
}

func serveAs(identity *Identity, mw func(http.Handler) http.Handler) int {
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithIdentity(req.Context(), identity))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestRequireConfirmed(t *testing.T) {
	assert.Equal(t, http.StatusOK, serveAs(Anonymous(), RequireConfirmed))
	assert.Equal(t, http.StatusForbidden, serveAs(&Identity{UserID: "u1"}, RequireConfirmed))
	assert.Equal(t, http.StatusOK, serveAs(&Identity{UserID: "u1", Confirmed: true}, RequireConfirmed))
}

func TestRequirePermission(t *testing.T) {
	writer := &Identity{
		UserID:      "u1",
		Confirmed:   true,
		Permissions: permission.Follow | permission.Comment | permission.Write,
	}

	assert.Equal(t, http.StatusUnauthorized, serveAs(Anonymous(), RequirePermission(permission.Write)))
	assert.Equal(t, http.StatusOK, serveAs(writer, RequirePermission(permission.Write)))
	assert.Equal(t, http.StatusForbidden, serveAs(writer, RequirePermission(permission.Moderate)))
	assert.Equal(t, http.StatusForbidden, serveAs(writer, RequireAdmin))
	assert.Equal(t, http.StatusUnauthorized, serveAs(Anonymous(), RequireAuthenticated))
}

func TestAnonymousHasNoPermissions(t *testing.T) {
	anon := Anonymous()
	anon.Permissions = 0xff

	assert.False(t, anon.Can(permission.Follow))
	assert.False(t, anon.IsAdministrator())

	var missing *Identity
	assert.True(t, missing.IsAnonymous())
	assert.True(t, GetIdentity(context.Background()).IsAnonymous())
	assert.Empty(t, GetUserID(context.Background()))
}
