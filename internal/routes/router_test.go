package routes_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-manager-api/internal/middleware"
	"task-manager-api/internal/routes"
	"task-manager-api/internal/services"
	"task-manager-api/testutil"
)

func newRouter(t *testing.T, ping func(ctx context.Context) error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := services.NewTokenService([]byte(testutil.TestJWTSecret), time.Hour)
	require.NoError(t, err)
	return routes.SetupRouter(routes.Dependencies{
		Users:        testutil.NewMemoryUserRepository(),
		Tasks:        testutil.NewMemoryTaskRepository(),
		Tokens:       tokens,
		Logger:       testutil.NewTestLogger(),
		Ping:         ping,
		AllowOrigins: []string{"http://example.test"},
	})
}

func TestHealthz(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := newRouter(t, func(context.Context) error { return nil })
		resp := testutil.DoJSON(t, r, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		r := newRouter(t, func(context.Context) error { return errors.New("dial tcp: connection refused") })
		resp := testutil.DoJSON(t, r, http.MethodGet, "/healthz", "", nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
		assert.NotContains(t, resp.Body.String(), "connection refused")
	})
}

func TestCORS(t *testing.T) {
	r := newRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "http://example.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "http://example.test", resp.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDOnEveryResponse(t *testing.T) {
	r := newRouter(t, nil)

	resp := testutil.DoJSON(t, r, http.MethodGet, "/", "", nil)
	assert.NotEmpty(t, resp.Header().Get(middleware.RequestIDHeader))

	resp = testutil.DoJSON(t, r, http.MethodGet, "/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.NotEmpty(t, resp.Header().Get(middleware.RequestIDHeader))
}

func TestUnknownRoute(t *testing.T) {
	r := newRouter(t, nil)
	resp := testutil.DoJSON(t, r, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
