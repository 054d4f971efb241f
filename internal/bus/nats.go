package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

const natsSubjectPrefix = "relay.events."

// NatsBus distributes events over core NATS subjects. Core NATS is
// deliberately used instead of JetStream: events to absent subscribers
// are dropped, matching the relay's no-replay contract.
type NatsBus struct {
	nc  *nats.Conn
	sub *nats.Subscription
}

type natsEvent struct {
	Key   string           `json:"key"`
	Event models.PushEvent `json:"event"`
}

func NewNatsBus(natsURL string) (*NatsBus, error) {
	log := log.WithField("prefix", "NewNatsBus")

	nc, err := nats.Connect(natsURL)
	if err != nil {
		log.Errorf("failed to connect to NATS: %v", err)
		return nil, err
	}

	log.Info("NATS bus initialized successfully")
	return &NatsBus{nc: nc}, nil
}

func (b *NatsBus) Publish(ctx context.Context, key string, ev models.PushEvent) error {
	log := log.WithField("prefix", "NatsBus.Publish")

	data, err := json.Marshal(natsEvent{Key: key, Event: ev})
	if err != nil {
		log.Errorf("failed to marshal event: %v", err)
		return err
	}
	if err := b.nc.Publish(natsSubjectPrefix+key, data); err != nil {
		log.Errorf("failed to publish event: %v", err)
		return err
	}
	return nil
}

// Start subscribes to the whole relay subject space; the registry decides
// which local connections each event reaches.
func (b *NatsBus) Start(ctx context.Context, deliver DeliverFunc) error {
	log := log.WithField("prefix", "NatsBus.Start")

	sub, err := b.nc.Subscribe(natsSubjectPrefix+">", func(msg *nats.Msg) {
		var ne natsEvent
		if err := json.Unmarshal(msg.Data, &ne); err != nil {
			log.Errorf("failed to unmarshal event: %v", err)
			return
		}
		deliver(ne.Key, ne.Event)
	})
	if err != nil {
		log.Errorf("failed to subscribe: %v", err)
		return err
	}
	b.sub = sub
	return nil
}

func (b *NatsBus) HealthCheck() error {
	if !b.nc.IsConnected() {
		return fmt.Errorf("NATS connection is not active")
	}
	return nil
}

func (b *NatsBus) Close() error {
	if b.sub != nil {
		b.sub.Unsubscribe() //nolint:errcheck
	}
	if b.nc != nil {
		b.nc.Close()
	}
	return nil
}
