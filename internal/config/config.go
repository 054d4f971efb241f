package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

var Config = struct {
	Port                  int      `env:"PORT" envDefault:"8080"`
	MetricsPort           int      `env:"METRICS_PORT" envDefault:"9103"`
	AuthServiceURL        string   `env:"AUTH_SERVICE_URL" envDefault:"http://localhost:3001"`
	EmailServiceURL       string   `env:"EMAIL_SERVICE_URL" envDefault:"http://localhost:3002"`
	CalendarServiceURL    string   `env:"CALENDAR_SERVICE_URL" envDefault:"http://localhost:3003"`
	WhatsAppServiceURL    string   `env:"WHATSAPP_SERVICE_URL" envDefault:"http://localhost:3004"`
	DownstreamTimeout     int      `env:"DOWNSTREAM_TIMEOUT" envDefault:"5"`
	BusType               string   `env:"BUS_TYPE" envDefault:"memory"`
	BusURI                string   `env:"BUS_URI"`
	WebhookVerifyToken    string   `env:"WEBHOOK_VERIFY_TOKEN"`
	CorsEnable            bool     `env:"CORS_ENABLE"`
	HeartbeatInterval     int      `env:"HEARTBEAT_INTERVAL" envDefault:"10"`
	RPSLimit              int      `env:"RPS_LIMIT" envDefault:"1000"`
	RateLimitsByPassToken []string `env:"RATE_LIMITS_BY_PASS_TOKEN"`
	ConnectionsLimit      int      `env:"CONNECTIONS_LIMIT" envDefault:"200"`
	SelfSignedTLS         bool     `env:"SELF_SIGNED_TLS" envDefault:"false"`
}{}

func LoadConfig() {
	if err := env.Parse(&Config); err != nil {
		log.Fatalf("config parsing failed: %v\n", err)
	}
}
