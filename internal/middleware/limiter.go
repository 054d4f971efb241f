package middleware

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// ConnectionsLimiter caps the number of concurrent persistent connections.
type ConnectionsLimiter struct {
	mux sync.Mutex
	max int
	cur int
}

func NewConnectionsLimiter(max int) *ConnectionsLimiter {
	return &ConnectionsLimiter{max: max}
}

// LeaseConnection reserves a connection slot. The returned release func
// must be called when the connection ends.
func (l *ConnectionsLimiter) LeaseConnection() (func(), error) {
	l.mux.Lock()
	defer l.mux.Unlock()
	if l.cur >= l.max {
		return nil, fmt.Errorf("connections limit reached: %d", l.max)
	}
	l.cur++
	return func() {
		l.mux.Lock()
		defer l.mux.Unlock()
		l.cur--
	}, nil
}

// ConnectionsLimit returns echo middleware holding a lease for the
// lifetime of each non-skipped request.
func ConnectionsLimit(limiter *ConnectionsLimiter, skipper func(c echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper(c) {
				return next(c)
			}
			release, err := limiter.LeaseConnection()
			if err != nil {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": err.Error()})
			}
			defer release()
			return next(c)
		}
	}
}
