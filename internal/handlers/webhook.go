package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/lessslie/yourdashboard-gateway/internal/bus"
	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

// NewMessageEvent is the server-to-client event name for relayed webhook
// notifications.
const NewMessageEvent = "new_message"

var relayedWebhooksMetric = promauto.NewCounter(prometheus.CounterOpts{
	Name: "number_of_relayed_webhooks",
	Help: "The total number of webhook notifications relayed to the bus",
})

// WebhookHandler accepts push notifications from the messaging provider
// and relays them to live connections through the event bus.
type WebhookHandler struct {
	bus         bus.Bus
	verifyToken string
}

func NewWebhookHandler(b bus.Bus, verifyToken string) *WebhookHandler {
	return &WebhookHandler{bus: b, verifyToken: verifyToken}
}

func (h *WebhookHandler) Register(e *echo.Echo) {
	e.POST("/webhooks/whatsapp", h.WhatsAppWebhook)
}

// WhatsAppWebhook normalizes the provider payload and publishes it keyed
// by recipient. Delivery past the bus is best effort: nobody connected
// means the event is dropped, there is no replay.
func (h *WebhookHandler) WhatsAppWebhook(c echo.Context) error {
	log := log.WithField("prefix", "WhatsAppWebhookHandler")

	if h.verifyToken != "" && c.QueryParam("token") != h.verifyToken {
		log.Error("webhook verify token mismatch")
		return c.JSON(http.StatusUnauthorized, ErrorResponse("invalid verify token", http.StatusUnauthorized))
	}

	var raw map[string]interface{}
	if err := json.NewDecoder(c.Request().Body).Decode(&raw); err != nil {
		badRequestMetric.Inc()
		log.Errorf("malformed webhook payload: %v", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse("malformed payload", http.StatusBadRequest))
	}

	key, event, err := NormalizeInboundEvent(raw)
	if err != nil {
		badRequestMetric.Inc()
		log.Error(err.Error())
		return c.JSON(http.StatusBadRequest, ErrorResponse(err.Error(), http.StatusBadRequest))
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorf("failed to marshal event: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse("internal error", http.StatusInternalServerError))
	}
	pushEvent := models.PushEvent{
		ID:      uuid.NewString(),
		Name:    NewMessageEvent,
		Payload: payload,
	}

	if err := h.bus.Publish(c.Request().Context(), key, pushEvent); err != nil {
		log.Errorf("failed to publish event: %v", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse("internal error", http.StatusInternalServerError))
	}

	relayedWebhooksMetric.Inc()
	return c.JSON(http.StatusOK, SuccessResponse())
}

// NormalizeInboundEvent maps an arbitrary provider payload onto the
// relay's event shape and extracts the routing key. Providers disagree on
// field names, so each field accepts the common aliases.
func NormalizeInboundEvent(raw map[string]interface{}) (string, models.InboundEvent, error) {
	pick := func(names ...string) string {
		for _, name := range names {
			switch v := raw[name].(type) {
			case string:
				if v != "" {
					return v
				}
			case float64:
				return strconv.FormatInt(int64(v), 10)
			}
		}
		return ""
	}

	key := pick("to", "userId", "recipient")
	if key == "" {
		return "", models.InboundEvent{}, errInboundField("to")
	}
	event := models.InboundEvent{
		From:      pick("from", "sender", "waId"),
		Message:   pick("message", "body", "text"),
		Timestamp: pick("timestamp", "time"),
		Name:      pick("name", "pushName", "displayName"),
	}
	if event.From == "" {
		return "", models.InboundEvent{}, errInboundField("from")
	}
	if event.Message == "" {
		return "", models.InboundEvent{}, errInboundField("message")
	}
	return key, event, nil
}

type inboundFieldError string

func errInboundField(field string) error {
	return inboundFieldError(field)
}

func (e inboundFieldError) Error() string {
	return "webhook payload missing field \"" + string(e) + "\""
}
