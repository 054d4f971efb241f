package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessslie/yourdashboard-gateway/internal/apierror"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc123", want: "abc123"},
		{name: "missing header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc123", wantErr: true},
		{name: "no space", header: "Bearerabc123", wantErr: true},
		{name: "empty token", header: "Bearer ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apierror.KindUnauthenticated, apierror.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenContext(t *testing.T) {
	ctx := WithToken(context.Background(), "tok")
	assert.Equal(t, "tok", TokenFromContext(ctx))
	assert.Empty(t, TokenFromContext(context.Background()))
}

func TestMiddlewareRejectsBeforeHandler(t *testing.T) {
	e := echo.New()
	called := 0
	h := Middleware()(func(c echo.Context) error {
		called++
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/emails", nil)
	rec := httptest.NewRecorder()
	err := h(e.NewContext(req, rec))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, called, "handler must not run without a bearer token")
}

func TestMiddlewareAttachesToken(t *testing.T) {
	e := echo.New()
	var seen string
	h := Middleware()(func(c echo.Context) error {
		seen = TokenFromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/emails", nil)
	req.Header.Set("Authorization", "Bearer tok-42")
	rec := httptest.NewRecorder()
	err := h(e.NewContext(req, rec))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-42", seen)
}
