package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/lessslie/yourdashboard-gateway/internal/apierror"
	"github.com/lessslie/yourdashboard-gateway/internal/auth"
)

// client is the shared downstream HTTP client. Every call is a single
// attempt; a timeout or transport failure is reported as the source's own
// failure, never retried.
type client struct {
	source  string
	baseURL string
	http    *http.Client
}

func newClient(source, baseURL string, timeout time.Duration) client {
	return client{
		source:  source,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, out interface{}) error {
	log := log.WithField("prefix", c.source+".client")

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return apierror.Internal(c.source, err)
	}
	if token := auth.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Errorf("%s %s failed: %v", method, path, err)
		return apierror.DownstreamUnavailable(c.source, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apierror.Unauthenticated(fmt.Sprintf("%s service rejected credential", c.source))
	case resp.StatusCode >= 300:
		log.Errorf("%s %s returned status %d", method, path, resp.StatusCode)
		return apierror.DownstreamRejected(c.source, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Errorf("%s %s returned malformed payload: %v", method, path, err)
		return apierror.Internal(c.source, err)
	}
	return nil
}

func (c *client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *client) postJSON(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, nil, out)
}

// Config carries the per-service endpoints and the shared downstream
// timeout for the pool.
type Config struct {
	AuthURL     string
	EmailURL    string
	CalendarURL string
	WhatsAppURL string
	Timeout     time.Duration
}

// Pool holds one typed client per downstream service.
type Pool struct {
	Auth     *AuthClient
	Email    *EmailClient
	Calendar *CalendarClient
	WhatsApp *WhatsAppClient
}

func NewPool(cfg Config) *Pool {
	return &Pool{
		Auth:     &AuthClient{client: newClient("auth", cfg.AuthURL, cfg.Timeout)},
		Email:    &EmailClient{client: newClient("email", cfg.EmailURL, cfg.Timeout)},
		Calendar: &CalendarClient{client: newClient("calendar", cfg.CalendarURL, cfg.Timeout)},
		WhatsApp: &WhatsAppClient{client: newClient("whatsapp", cfg.WhatsAppURL, cfg.Timeout)},
	}
}
