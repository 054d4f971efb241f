package bus

import (
	"context"
	"fmt"

	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

// DeliverFunc routes a bus message to the local connection registry.
type DeliverFunc func(key string, ev models.PushEvent)

// Bus distributes relay events between gateway instances. Delivery is
// fire-and-forget: events published while nobody listens are dropped, no
// backend persists or replays anything.
type Bus interface {
	Publish(ctx context.Context, key string, ev models.PushEvent) error
	Start(ctx context.Context, deliver DeliverFunc) error
	HealthCheck() error
	Close() error
}

func NewBus(busType string, uri string) (Bus, error) {
	switch busType {
	case "nats":
		return NewNatsBus(uri)
	case "redis", "valkey":
		return NewRedisBus(uri)
	case "memory", "":
		return NewMemoryBus(), nil
	default:
		return nil, fmt.Errorf("unsupported bus type: %s", busType)
	}
}
