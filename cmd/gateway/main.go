package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	client_prometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"golang.org/x/time/rate"

	"github.com/lessslie/yourdashboard-gateway/internal/auth"
	"github.com/lessslie/yourdashboard-gateway/internal/bus"
	"github.com/lessslie/yourdashboard-gateway/internal/clients"
	"github.com/lessslie/yourdashboard-gateway/internal/config"
	"github.com/lessslie/yourdashboard-gateway/internal/crypto"
	"github.com/lessslie/yourdashboard-gateway/internal/handlers"
	gateway_middleware "github.com/lessslie/yourdashboard-gateway/internal/middleware"
	"github.com/lessslie/yourdashboard-gateway/internal/models"
	"github.com/lessslie/yourdashboard-gateway/internal/orchestrator"
	"github.com/lessslie/yourdashboard-gateway/internal/relay"
)

var (
	tokenUsageMetric = promauto.NewCounterVec(client_prometheus.CounterOpts{
		Name: "gateway_token_usage",
	}, []string{"token"})

	healthMetric = promauto.NewGauge(client_prometheus.GaugeOpts{
		Name: "gateway_health_status",
		Help: "Health status of the gateway (1 = healthy, 0 = unhealthy)",
	})
	readyMetric = promauto.NewGauge(client_prometheus.GaugeOpts{
		Name: "gateway_ready_status",
		Help: "Ready status of the gateway (1 = ready, 0 = not ready)",
	})
)

func skipRateLimitsByToken(request *http.Request) bool {
	if request == nil {
		return false
	}
	authorization := request.Header.Get("Authorization")
	if authorization == "" {
		return false
	}
	token := strings.TrimPrefix(authorization, "Bearer ")
	exist := slices.Contains(config.Config.RateLimitsByPassToken, token)
	if exist {
		tokenUsageMetric.WithLabelValues(token).Inc()
		return true
	}
	return false
}

func startInternalListener(eventBus bus.Bus) {
	http.Handle("/metrics", promhttp.Handler())
	http.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := log.WithField("prefix", "HealthHandler")
		log.Debug("health check request received")

		healthMetric.Set(1)

		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{
			"status": "ok",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Errorf("failed to encode health check response: %v", err)
			healthMetric.Set(0)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}))
	http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		log := log.WithField("prefix", "ReadyHandler")
		log.Debug("readiness check request received")

		if err := eventBus.HealthCheck(); err != nil {
			log.Errorf("event bus connection error: %v", err)
			readyMetric.Set(0)
			http.Error(w, "Event bus not ready", http.StatusInternalServerError)
			return
		}

		readyMetric.Set(1)

		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{
			"status": "ready",
		}
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Errorf("failed to encode readiness check response: %v", err)
			readyMetric.Set(0)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	})

	healthMetric.Set(1)
	if err := eventBus.HealthCheck(); err != nil {
		readyMetric.Set(0)
	} else {
		readyMetric.Set(1)
	}

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			if err := eventBus.HealthCheck(); err != nil {
				readyMetric.Set(0)
			} else {
				readyMetric.Set(1)
			}
		}
	}()

	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", config.Config.MetricsPort), nil))
	}()
}

func main() {
	log.Info("Gateway is running")
	config.LoadConfig()

	eventBus, err := bus.NewBus(config.Config.BusType, config.Config.BusURI)
	if err != nil {
		log.Fatalf("failed to create event bus: %v", err)
	}
	if _, ok := eventBus.(*bus.MemoryBus); ok {
		log.Info("Using in-memory event bus")
	} else {
		log.Infof("Using %s event bus", config.Config.BusType)
	}

	registry := relay.NewRegistry()
	if err := eventBus.Start(context.Background(), func(key string, ev models.PushEvent) {
		registry.Dispatch(key, ev)
	}); err != nil {
		log.Fatalf("failed to start event bus: %v", err)
	}

	startInternalListener(eventBus)

	e := echo.New()
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		Skipper:           nil,
		DisableStackAll:   true,
		DisablePrintStack: false,
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			if skipRateLimitsByToken(c.Request()) || c.Path() != "/webhooks/whatsapp" {
				return true
			}
			return false
		},
		Store: middleware.NewRateLimiterMemoryStore(rate.Limit(config.Config.RPSLimit)),
	}))
	e.Use(gateway_middleware.ConnectionsLimit(gateway_middleware.NewConnectionsLimiter(config.Config.ConnectionsLimit), func(c echo.Context) bool {
		if skipRateLimitsByToken(c.Request()) || c.Path() != "/events" {
			return true
		}
		return false
	}))

	if config.Config.CorsEnable {
		corsConfig := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{echo.GET, echo.POST, echo.OPTIONS},
			AllowHeaders:     []string{"DNT", "X-CustomHeader", "Keep-Alive", "User-Agent", "X-Requested-With", "If-Modified-Since", "Cache-Control", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           86400,
		})
		e.Use(corsConfig)
	}

	pool := clients.NewPool(clients.Config{
		AuthURL:     config.Config.AuthServiceURL,
		EmailURL:    config.Config.EmailServiceURL,
		CalendarURL: config.Config.CalendarServiceURL,
		WhatsAppURL: config.Config.WhatsAppServiceURL,
		Timeout:     time.Duration(config.Config.DownstreamTimeout) * time.Second,
	})
	orch := orchestrator.New(pool)

	api := e.Group("", auth.Middleware())
	handlers.NewDashboardHandler(orch).Register(api)
	handlers.NewEventsHandler(registry, time.Duration(config.Config.HeartbeatInterval)*time.Second).Register(api)
	handlers.NewWebhookHandler(eventBus, config.Config.WebhookVerifyToken).Register(e)
	handlers.NewHealthHandler(eventBus).Register(e)

	var existedPaths []string
	for _, r := range e.Routes() {
		existedPaths = append(existedPaths, r.Path)
	}
	p := prometheus.NewPrometheus("http", func(c echo.Context) bool {
		return !slices.Contains(existedPaths, c.Path())
	})
	e.Use(p.HandlerFunc)

	go func() {
		if config.Config.SelfSignedTLS {
			cert, key, err := crypto.GenerateSelfSignedCertificate()
			if err != nil {
				log.Fatalf("failed to generate self signed certificate: %v", err)
			}
			if err := e.StartTLS(fmt.Sprintf(":%v", config.Config.Port), cert, key); err != nil && err != http.ErrServerClosed {
				log.Fatalf("server error: %v", err)
			}
		} else {
			if err := e.Start(fmt.Sprintf(":%v", config.Config.Port)); err != nil && err != http.ErrServerClosed {
				log.Fatalf("server error: %v", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	registry.CloseAll()
	if err := eventBus.Close(); err != nil {
		log.Errorf("failed to close event bus: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorf("failed to shut down server: %v", err)
	}
}
