package bus

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

func TestNewBus(t *testing.T) {
	tests := []struct {
		name    string
		busType string
		wantErr bool
	}{
		{name: "memory", busType: "memory"},
		{name: "empty defaults to memory", busType: ""},
		{name: "unsupported", busType: "kafka", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBus(tt.busType, "")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, b)
			assert.NoError(t, b.HealthCheck())
			assert.NoError(t, b.Close())
		})
	}
}

func TestMemoryBusDeliversPublishedEvents(t *testing.T) {
	b := NewMemoryBus()

	var mu sync.Mutex
	var gotKeys []string
	require.NoError(t, b.Start(context.Background(), func(key string, ev models.PushEvent) {
		mu.Lock()
		defer mu.Unlock()
		gotKeys = append(gotKeys, key)
	}))

	ev := models.PushEvent{ID: "1", Name: "new_message", Payload: json.RawMessage(`{}`)}
	require.NoError(t, b.Publish(context.Background(), "user:1", ev))
	require.NoError(t, b.Publish(context.Background(), "user:2", ev))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"user:1", "user:2"}, gotKeys)
}

func TestMemoryBusDropsWithoutConsumer(t *testing.T) {
	b := NewMemoryBus()
	ev := models.PushEvent{ID: "1", Name: "new_message"}
	assert.NoError(t, b.Publish(context.Background(), "user:1", ev), "publishing before Start drops silently")

	require.NoError(t, b.Start(context.Background(), func(string, models.PushEvent) {
		t.Fatal("event published before Start must not be replayed")
	}))
}

func TestMemoryBusClosedDropsEvents(t *testing.T) {
	b := NewMemoryBus()
	delivered := 0
	require.NoError(t, b.Start(context.Background(), func(string, models.PushEvent) { delivered++ }))
	require.NoError(t, b.Close())
	require.NoError(t, b.Publish(context.Background(), "user:1", models.PushEvent{ID: "1"}))
	assert.Zero(t, delivered)
}
