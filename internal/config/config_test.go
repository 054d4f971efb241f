package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	LoadConfig()

	assert.Equal(t, 8080, Config.Port)
	assert.Equal(t, 9103, Config.MetricsPort)
	assert.Equal(t, "memory", Config.BusType)
	assert.Equal(t, 5, Config.DownstreamTimeout)
	assert.Equal(t, 10, Config.HeartbeatInterval)
	assert.Equal(t, 200, Config.ConnectionsLimit)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("BUS_TYPE", "nats")
	t.Setenv("BUS_URI", "nats://localhost:4222")
	t.Setenv("EMAIL_SERVICE_URL", "http://email:3002")

	LoadConfig()

	assert.Equal(t, 9999, Config.Port)
	assert.Equal(t, "nats", Config.BusType)
	assert.Equal(t, "nats://localhost:4222", Config.BusURI)
	assert.Equal(t, "http://email:3002", Config.EmailServiceURL)
}
