package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/lessslie/yourdashboard-gateway/internal/relay"
)

var (
	activeConnectionMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "number_of_active_connections",
		Help: "The number of active connections",
	})
	keysPerConnectionMetric = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "number_of_keys_per_connection",
		Buckets: []float64{1, 2, 3, 4, 5, 10, 20, 30, 40, 50, 100},
	})
)

// EventsHandler serves the persistent client channel. Each connection
// moves through Connecting (handshake + registration), Open (event loop)
// and Closed (deregistration, terminal).
type EventsHandler struct {
	registry          *relay.Registry
	heartbeatInterval time.Duration
}

func NewEventsHandler(registry *relay.Registry, heartbeatInterval time.Duration) *EventsHandler {
	return &EventsHandler{
		registry:          registry,
		heartbeatInterval: heartbeatInterval,
	}
}

// Register registers the SSE route on an authenticated group.
func (h *EventsHandler) Register(g *echo.Group) {
	g.GET("/events", h.Subscribe)
}

// Subscribe upgrades the request into a long-lived SSE stream subscribed
// to the channel keys from the handshake.
func (h *EventsHandler) Subscribe(c echo.Context) error {
	log := log.WithField("prefix", "SubscribeHandler")

	_, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		http.Error(c.Response().Writer, "streaming unsupported", http.StatusInternalServerError)
		return c.JSON(http.StatusBadRequest, ErrorResponse("streaming unsupported", http.StatusBadRequest))
	}

	channel := c.QueryParam("channel")
	if channel == "" {
		badRequestMetric.Inc()
		errorMsg := "param \"channel\" not present"
		log.Error(errorMsg)
		return c.JSON(http.StatusBadRequest, ErrorResponse(errorMsg, http.StatusBadRequest))
	}
	keys := strings.Split(channel, ",")
	keysPerConnectionMetric.Observe(float64(len(keys)))

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("Transfer-Encoding", "chunked")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(c.Response(), "\n"); err != nil {
		log.Errorf("failed to write initial newline: %v", err)
		return err
	}
	c.Response().Flush()

	session := relay.NewSession(keys)
	h.registry.Register(session)
	activeConnectionMetric.Inc()

	ctx := c.Request().Context()
	go func() {
		<-ctx.Done()
		h.registry.Unregister(session)
		session.Close()
		log.Infof("connection %s closed: %v", session.ID, ctx.Err())
	}()

	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()
loop:
	for {
		select {
		case ev := <-session.Events():
			_, err := fmt.Fprintf(c.Response(), "event: %v\nid: %v\ndata: %v\n\n", ev.Name, ev.ID, string(ev.Payload))
			if err != nil {
				log.Errorf("can't write event to connection: %v", err)
				break loop
			}
			c.Response().Flush()
		case <-session.Done():
			// Evicted by the registry, e.g. on shutdown.
			break loop
		case <-ticker.C:
			_, err := fmt.Fprintf(c.Response(), "event: heartbeat\n\n")
			if err != nil {
				log.Errorf("can't write heartbeat to connection: %v", err)
				break loop
			}
			c.Response().Flush()
		}
	}

	h.registry.Unregister(session)
	session.Close()
	activeConnectionMetric.Dec()
	log.Info("connection closed")
	return nil
}
