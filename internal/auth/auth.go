package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/lessslie/yourdashboard-gateway/internal/apierror"
)

var unauthenticatedMetric = promauto.NewCounter(prometheus.CounterOpts{
	Name: "number_of_unauthenticated_requests",
	Help: "The total number of requests rejected at the bearer boundary",
})

type tokenKey struct{}

// ExtractBearerToken pulls the credential out of an Authorization header
// value. It only checks the bearer form; cryptographic validation is the
// downstream auth service's job.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", apierror.Unauthenticated("missing authorization header")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", apierror.Unauthenticated("invalid authorization header format")
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", apierror.Unauthenticated("empty token")
	}
	return token, nil
}

// WithToken returns a context carrying the caller's credential for
// downstream forwarding.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the credential attached by the middleware, or
// empty if the request never passed the boundary check.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Middleware rejects requests without a well-formed bearer credential
// before any downstream dispatch and attaches the token to the request
// context for the service clients.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := log.WithField("prefix", "auth.Middleware")
			token, err := ExtractBearerToken(c.Request().Header.Get("Authorization"))
			if err != nil {
				unauthenticatedMetric.Inc()
				log.Debugf("rejected request to %s: %v", c.Path(), err)
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithToken(req.Context(), token)))
			return next(c)
		}
	}
}
