package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/lessslie/yourdashboard-gateway/internal/apierror"
)

var badRequestMetric = promauto.NewCounter(prometheus.CounterOpts{
	Name: "number_of_bad_requests",
	Help: "The total number of bad requests",
})

// Response represents a standard HTTP response
type Response struct {
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// SuccessResponse returns a success response
func SuccessResponse() Response {
	return Response{
		Message:    "OK",
		StatusCode: http.StatusOK,
	}
}

// ErrorResponse returns an error response
func ErrorResponse(message string, statusCode int) Response {
	return Response{
		Message:    message,
		StatusCode: statusCode,
	}
}

// errorJSON maps a gateway error to its client-facing status. Internal
// failures are logged and returned as a generic message.
func errorJSON(c echo.Context, err error) error {
	if e, ok := apierror.As(err); ok && e.Kind != apierror.KindInternal {
		status := e.HTTPStatus()
		if status == http.StatusBadRequest {
			badRequestMetric.Inc()
		}
		return c.JSON(status, ErrorResponse(e.Error(), status))
	}
	log.WithField("prefix", "handlers.errorJSON").Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse("internal error", http.StatusInternalServerError))
}
