package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

const redisChannelPrefix = "relay:events:"

// RedisBus distributes events over Redis pub/sub channels.
type RedisBus struct {
	client *redis.Client
	pubsub *redis.PubSub
}

type redisEvent struct {
	Key   string           `json:"key"`
	Event models.PushEvent `json:"event"`
}

func NewRedisBus(redisURI string) (*RedisBus, error) {
	log := log.WithField("prefix", "NewRedisBus")

	opts, err := redis.ParseURL(redisURI)
	if err != nil {
		log.Errorf("failed to parse Redis URI: %v", err)
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorf("failed to connect to Redis: %v", err)
		return nil, err
	}

	log.Info("Redis bus initialized successfully")
	return &RedisBus{client: client}, nil
}

func (b *RedisBus) Publish(ctx context.Context, key string, ev models.PushEvent) error {
	log := log.WithField("prefix", "RedisBus.Publish")

	data, err := json.Marshal(redisEvent{Key: key, Event: ev})
	if err != nil {
		log.Errorf("failed to marshal event: %v", err)
		return err
	}
	if err := b.client.Publish(ctx, redisChannelPrefix+key, data).Err(); err != nil {
		log.Errorf("failed to publish event: %v", err)
		return err
	}
	return nil
}

func (b *RedisBus) Start(ctx context.Context, deliver DeliverFunc) error {
	log := log.WithField("prefix", "RedisBus.Start")

	b.pubsub = b.client.PSubscribe(ctx, redisChannelPrefix+"*")
	if _, err := b.pubsub.Receive(ctx); err != nil {
		log.Errorf("failed to subscribe: %v", err)
		return err
	}

	go func() {
		for msg := range b.pubsub.Channel() {
			var re redisEvent
			if err := json.Unmarshal([]byte(msg.Payload), &re); err != nil {
				log.Errorf("failed to unmarshal event: %v", err)
				continue
			}
			deliver(re.Key, re.Event)
		}
	}()
	return nil
}

func (b *RedisBus) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return b.client.Ping(ctx).Err()
}

func (b *RedisBus) Close() error {
	if b.pubsub != nil {
		b.pubsub.Close() //nolint:errcheck
	}
	return b.client.Close()
}
