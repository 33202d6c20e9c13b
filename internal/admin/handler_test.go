// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/middleware"
	"github.com/carterperez-dev/templates/blog-api/internal/permission"
)

type fixedCounter struct {
	stats *ContentStats
}

func (f fixedCounter) CountContent(context.Context) (*ContentStats, error) {
	return f.stats, nil
}

func routerAs(h *Handler, perms permission.Permission) http.Handler {
	identity := &middleware.Identity{UserID: "u1", Confirmed: true, Permissions: perms}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(
				middleware.WithIdentity(req.Context(), identity),
			))
		})
	})
	h.RegisterRoutes(r, middleware.RequireAdmin)
	return r
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatsRequireAdministrator(t *testing.T) {
	h := NewHandler(HandlerConfig{})

	moderator := permission.Follow | permission.Comment | permission.Write | permission.Moderate
	assert.Equal(t, http.StatusForbidden, get(routerAs(h, moderator), "/admin/stats").Code)
	assert.Equal(t, http.StatusOK, get(routerAs(h, 0xff), "/admin/stats/runtime").Code)
}

func TestSystemStatsIncludesContentAndMail(t *testing.T) {
	h := NewHandler(HandlerConfig{
		DBStats:   func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25} },
		DBPing:    func(context.Context) error { return nil },
		MailStats: func() (int, int) { return 2, 100 },
		Content:   fixedCounter{stats: &ContentStats{Users: 3, Posts: 7}},
	})

	rec := get(routerAs(h, 0xff), "/admin/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SystemStatsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Database.Healthy)
	assert.Equal(t, 25, resp.Database.Stats.MaxOpenConnections)
	require.NotNil(t, resp.Mail)
	assert.Equal(t, 2, resp.Mail.Pending)
	require.NotNil(t, resp.Content)
	assert.Equal(t, 7, resp.Content.Posts)
	assert.Nil(t, resp.Redis.Stats)
}

func TestDatabaseStats(t *testing.T) {
	t.Run("mapped from pool", func(t *testing.T) {
		h := NewHandler(HandlerConfig{
			DBStats: func() sql.DBStats {
				return sql.DBStats{
					MaxOpenConnections: 25,
					OpenConnections:    4,
					InUse:              1,
					Idle:               3,
					WaitCount:          9,
					WaitDuration:       1500 * time.Millisecond,
				}
			},
		})

		rec := get(routerAs(h, 0xff), "/admin/stats/db")
		require.Equal(t, http.StatusOK, rec.Code)

		var stats DBPoolStats
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
		assert.Equal(t, 4, stats.OpenConnections)
		assert.Equal(t, 3, stats.Idle)
		assert.Equal(t, int64(9), stats.WaitCount)
		assert.Equal(t, "1.5s", stats.WaitDuration)
	})

	t.Run("no pool", func(t *testing.T) {
		rec := get(routerAs(NewHandler(HandlerConfig{}), 0xff), "/admin/stats")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp SystemStatsResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.True(t, resp.Database.Healthy)
		assert.Nil(t, resp.Database.Stats)
	})
}

func TestCountContent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM users WHERE deleted_at IS NULL\) AS users`).
		WillReturnRows(sqlmock.NewRows([]string{
			"users", "unconfirmed_users", "posts", "comments", "disabled_comments", "follows",
		}).AddRow(10, 2, 40, 90, 3, 12))

	stats, err := NewRepository(sqlx.NewDb(db, "sqlmock")).CountContent(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Users)
	assert.Equal(t, 3, stats.DisabledComments)
	require.NoError(t, mock.ExpectationsWereMet())
}
