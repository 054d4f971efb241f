package bus

import (
	"context"
	"sync"

	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

// MemoryBus is the single-instance backend: publish hands the event
// straight to the local deliver function.
type MemoryBus struct {
	mux     sync.RWMutex
	deliver DeliverFunc
	closed  bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) Start(ctx context.Context, deliver DeliverFunc) error {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.deliver = deliver
	return nil
}

func (b *MemoryBus) Publish(ctx context.Context, key string, ev models.PushEvent) error {
	b.mux.RLock()
	deliver := b.deliver
	closed := b.closed
	b.mux.RUnlock()
	if closed || deliver == nil {
		// No consumer yet, the event is dropped.
		return nil
	}
	deliver(key, ev)
	return nil
}

func (b *MemoryBus) HealthCheck() error {
	return nil
}

func (b *MemoryBus) Close() error {
	b.mux.Lock()
	defer b.mux.Unlock()
	b.closed = true
	b.deliver = nil
	return nil
}
