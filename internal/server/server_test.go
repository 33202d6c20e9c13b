// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/blog-api/internal/config"
	"github.com/carterperez-dev/templates/blog-api/internal/core"
)

type recordingHealth struct {
	ready    bool
	shutdown bool
}

func (h *recordingHealth) SetReady(ready bool)       { h.ready = ready }
func (h *recordingHealth) SetShutdown(shutdown bool) { h.shutdown = shutdown }

func TestRouterErrorsAreJSON(t *testing.T) {
	srv := New(Config{ServerConfig: config.ServerConfig{Port: 0}})
	srv.Router().Get("/only-get", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body core.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.NotEmpty(t, body.Message)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/only-get", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestShutdownMarksHealth(t *testing.T) {
	health := &recordingHealth{ready: true}
	srv := New(Config{
		ServerConfig:  config.ServerConfig{ShutdownTimeout: time.Second},
		HealthHandler: health,
	})

	require.NoError(t, srv.Shutdown(context.Background(), 0))
	assert.False(t, health.ready)
	assert.True(t, health.shutdown)
}
