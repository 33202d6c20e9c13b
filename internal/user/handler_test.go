// AngelaMos | 2026
// handler_test.go

package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

func newTestHandler(
	t *testing.T,
	identity *middleware.Identity,
) (http.Handler, sqlmock.Sqlmock) {
	t.Helper()

	repo, mock := newMockRepo(t)
	h := NewHandler(NewService(repo, newStaticRoles()), 50)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(
				middleware.WithIdentity(req.Context(), identity),
			))
		})
	})
	h.RegisterRoutes(r)
	h.RegisterAdminRoutes(r, middleware.RequireAdmin)
	return r, mock
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestGetUserRejectsMalformedID(t *testing.T) {
	router, mock := newTestHandler(t, middleware.Anonymous())

	rec := serve(router, http.MethodGet, "/users/not-a-uuid")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserNotFound(t *testing.T) {
	router, mock := newTestHandler(t, middleware.Anonymous())
	id := uuid.NewString()

	mock.ExpectQuery(`SELECT .* FROM users u`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(userColumns))

	rec := serve(router, http.MethodGet, "/users/"+id)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeRequiresAuthentication(t *testing.T) {
	router, _ := newTestHandler(t, middleware.Anonymous())

	rec := serve(router, http.MethodGet, "/users/me")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFollowHandler(t *testing.T) {
	self := uuid.NewString()

	tests := []struct {
		name     string
		identity *middleware.Identity
		target   string
		want     int
	}{
		{
			name:     "anonymous",
			identity: middleware.Anonymous(),
			target:   uuid.NewString(),
			want:     http.StatusUnauthorized,
		},
		{
			name: "missing follow permission",
			identity: &middleware.Identity{
				UserID:    self,
				Confirmed: true,
			},
			target: uuid.NewString(),
			want:   http.StatusForbidden,
		},
		{
			name: "self",
			identity: &middleware.Identity{
				UserID:      self,
				Confirmed:   true,
				Permissions: permission.Follow,
			},
			target: self,
			want:   http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mock := newTestHandler(t, tt.identity)

			rec := serve(router, http.MethodPost, "/users/"+tt.target+"/follow")

			assert.Equal(t, tt.want, rec.Code)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetUserReportsFollowingForViewer(t *testing.T) {
	viewer := uuid.NewString()
	target := uuid.NewString()
	router, mock := newTestHandler(t, &middleware.Identity{
		UserID:      viewer,
		Confirmed:   true,
		Permissions: permission.Follow,
	})
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users u`).
		WithArgs(target).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(
			target, "pan@example.com", "pan", "hash", true,
			int64(1), permission.RoleUser, int64(0x07),
			"", "", "", "", int64(0), now, now, nil,
		))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM follows`).
		WithArgs(viewer, target).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	rec := serve(router, http.MethodGet, "/users/"+target)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.IsFollowing)
	assert.True(t, *resp.IsFollowing)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMeSoftDeletes(t *testing.T) {
	self := uuid.NewString()
	router, mock := newTestHandler(t, &middleware.Identity{UserID: self, Confirmed: true})

	mock.ExpectExec(`UPDATE users\s+SET deleted_at = NOW\(\)`).
		WithArgs(self).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := serve(router, http.MethodDelete, "/users/me")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAccount(t *testing.T) {
	admin := uuid.NewString()
	identity := &middleware.Identity{
		UserID:      admin,
		Confirmed:   true,
		Permissions: permission.Administer,
	}

	t.Run("other account", func(t *testing.T) {
		router, mock := newTestHandler(t, identity)
		target := uuid.NewString()

		mock.ExpectExec(`UPDATE users\s+SET deleted_at = NOW\(\)`).
			WithArgs(target).
			WillReturnResult(sqlmock.NewResult(0, 1))

		rec := serve(router, http.MethodDelete, "/admin/users/"+target)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already deleted", func(t *testing.T) {
		router, mock := newTestHandler(t, identity)
		target := uuid.NewString()

		mock.ExpectExec(`UPDATE users\s+SET deleted_at = NOW\(\)`).
			WithArgs(target).
			WillReturnResult(sqlmock.NewResult(0, 0))

		rec := serve(router, http.MethodDelete, "/admin/users/"+target)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("own account", func(t *testing.T) {
		router, mock := newTestHandler(t, identity)

		rec := serve(router, http.MethodDelete, "/admin/users/"+admin)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
