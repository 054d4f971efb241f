package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessslie/yourdashboard-gateway/internal/apierror"
	"github.com/lessslie/yourdashboard-gateway/internal/auth"
	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

func emailClientFor(url string) *EmailClient {
	return &EmailClient{client: newClient("email", url, 2*time.Second)}
}

func TestEmailListForwardsTokenAndParams(t *testing.T) {
	var gotAuth, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"emails":[{"id":"m1","from":"a@b.c","subject":"hi"}],"total":1}`))
	}))
	defer srv.Close()

	ctx := auth.WithToken(context.Background(), "tok-1")
	page, err := emailClientFor(srv.URL).List(ctx, "1", models.PageParams{Page: 1, Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Contains(t, gotQuery, "userId=1")
	assert.Contains(t, gotQuery, "page=1")
	assert.Contains(t, gotQuery, "limit=50")
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "m1", page.Items[0].ID)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   apierror.Kind
	}{
		{name: "401 maps to unauthenticated", status: http.StatusUnauthorized, want: apierror.KindUnauthenticated},
		{name: "403 maps to unauthenticated", status: http.StatusForbidden, want: apierror.KindUnauthenticated},
		{name: "404 is a rejection", status: http.StatusNotFound, want: apierror.KindDownstreamRejected},
		{name: "500 is a rejection", status: http.StatusInternalServerError, want: apierror.KindDownstreamRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := emailClientFor(srv.URL).List(context.Background(), "1", models.PageParams{Page: 1, Limit: 20})
			require.Error(t, err)
			assert.Equal(t, tt.want, apierror.KindOf(err))
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := emailClientFor(srv.URL).List(context.Background(), "1", models.PageParams{Page: 1, Limit: 20})
	require.Error(t, err)
	assert.Equal(t, apierror.KindDownstreamUnavailable, apierror.KindOf(err))
}

func TestTimeoutIsUnavailableAndSingleAttempt(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := &EmailClient{client: newClient("email", srv.URL, 20*time.Millisecond)}
	_, err := c.List(context.Background(), "1", models.PageParams{Page: 1, Limit: 20})
	require.Error(t, err)
	assert.Equal(t, apierror.KindDownstreamUnavailable, apierror.KindOf(err))
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "timed-out calls are not retried")
}

func TestSaveFullContentPassesPayloadThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails/m7/save-full-content", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"saved":true,"emailId":"m7"}`))
	}))
	defer srv.Close()

	payload, err := emailClientFor(srv.URL).SaveFullContent(context.Background(), "m7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"saved":true,"emailId":"m7"}`, string(payload))
}
