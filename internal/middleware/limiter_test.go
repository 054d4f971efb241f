package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseConnection(t *testing.T) {
	l := NewConnectionsLimiter(2)

	release1, err := l.LeaseConnection()
	require.NoError(t, err)
	release2, err := l.LeaseConnection()
	require.NoError(t, err)

	_, err = l.LeaseConnection()
	require.Error(t, err)

	release1()
	release3, err := l.LeaseConnection()
	require.NoError(t, err)
	release2()
	release3()
}

func TestConnectionsLimitMiddleware(t *testing.T) {
	e := echo.New()
	limiter := NewConnectionsLimiter(0)
	h := ConnectionsLimit(limiter, func(c echo.Context) bool { return false })(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	err := h(e.NewContext(httptest.NewRequest(http.MethodGet, "/events", nil), rec))
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestConnectionsLimitSkipper(t *testing.T) {
	e := echo.New()
	limiter := NewConnectionsLimiter(0)
	h := ConnectionsLimit(limiter, func(c echo.Context) bool { return true })(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	err := h(e.NewContext(httptest.NewRequest(http.MethodGet, "/emails", nil), rec))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}
