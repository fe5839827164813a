package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"court-reservation-api/core/config"
	"court-reservation-api/core/metrics"
	"court-reservation-api/core/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret"

func newTestServer(m *Middleware) *echo.Echo {
	e := echo.New()
	e.Use(m.RequestLogger())
	e.GET("/private", func(c echo.Context) error {
		claims, ok := TokenClaims(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, claims.Username)
	}, m.AuthMiddleware())
	e.GET("/limited", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, m.RateLimit())
	e.GET("/panic", func(c echo.Context) error {
		panic("boom")
	}, m.Recover())
	return e
}

func TestAuthMiddleware(t *testing.T) {
	m := NewMiddleware(testSecret, metrics.New(), config.RateLimitConfig{})
	e := newTestServer(m)

	valid, err := utils.GenerateToken("ann", testSecret, time.Minute)
	require.NoError(t, err)
	expired, err := utils.GenerateToken("ann", testSecret, -time.Minute)
	require.NoError(t, err)
	foreign, err := utils.GenerateToken("ann", "other-secret", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid token", header: "Bearer " + valid, status: http.StatusOK, body: "ann"},
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, status: http.StatusUnauthorized, body: "TOKEN_EXPIRED"},
		{name: "wrong secret", header: "Bearer " + foreign, status: http.StatusUnauthorized, body: "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
			assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
		})
	}
}

func TestRateLimit(t *testing.T) {
	m := NewMiddleware(testSecret, metrics.New(), config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2})
	e := newTestServer(m)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/limited", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRecover(t *testing.T) {
	m := NewMiddleware(testSecret, metrics.New(), config.RateLimitConfig{})
	e := newTestServer(m)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
