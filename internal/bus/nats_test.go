package bus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

func startNatsServer(t *testing.T) string {
	t.Helper()
	opts := &server.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	}
	srv, err := server.NewServer(opts)
	require.NoError(t, err)
	go srv.Start()
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("nats server did not start")
	}
	t.Cleanup(srv.Shutdown)
	return srv.ClientURL()
}

func TestNatsBusPublishSubscribe(t *testing.T) {
	url := startNatsServer(t)

	receiver, err := NewNatsBus(url)
	require.NoError(t, err)
	defer receiver.Close()

	sender, err := NewNatsBus(url)
	require.NoError(t, err)
	defer sender.Close()

	got := make(chan models.PushEvent, 1)
	gotKey := make(chan string, 1)
	require.NoError(t, receiver.Start(context.Background(), func(key string, ev models.PushEvent) {
		gotKey <- key
		got <- ev
	}))

	ev := models.PushEvent{
		ID:      "ev-1",
		Name:    "new_message",
		Payload: json.RawMessage(`{"from":"+123","message":"hi"}`),
	}
	require.NoError(t, sender.Publish(context.Background(), "user:1", ev))

	select {
	case key := <-gotKey:
		assert.Equal(t, "user:1", key)
		received := <-got
		assert.Equal(t, ev.ID, received.ID)
		assert.Equal(t, ev.Name, received.Name)
		assert.JSONEq(t, string(ev.Payload), string(received.Payload))
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered over NATS")
	}
}

func TestNatsBusHealthCheck(t *testing.T) {
	url := startNatsServer(t)

	b, err := NewNatsBus(url)
	require.NoError(t, err)
	assert.NoError(t, b.HealthCheck())

	require.NoError(t, b.Close())
	assert.Error(t, b.HealthCheck())
}

func TestNatsBusDropsWhenNoSubscriber(t *testing.T) {
	url := startNatsServer(t)

	sender, err := NewNatsBus(url)
	require.NoError(t, err)
	defer sender.Close()

	// Nobody subscribed anywhere: publish succeeds, event is gone.
	err = sender.Publish(context.Background(), "user:absent", models.PushEvent{ID: "ev-1"})
	assert.NoError(t, err)
}
