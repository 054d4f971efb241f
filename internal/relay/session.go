package relay

import (
	"sync"

	"github.com/google/uuid"

	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

// Session is one live client connection. It owns a buffered event channel
// drained by the SSE handler; pushes never block, a slow consumer just
// loses events.
type Session struct {
	ID     string
	Keys   []string
	events chan models.PushEvent
	closer chan struct{}
	once   sync.Once
}

func NewSession(keys []string) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Keys:   keys,
		events: make(chan models.PushEvent, 100),
		closer: make(chan struct{}),
	}
}

// Events returns the read-only channel the transport loop drains.
func (s *Session) Events() <-chan models.PushEvent {
	return s.events
}

// Done is closed when the session is terminal.
func (s *Session) Done() <-chan struct{} {
	return s.closer
}

// Push delivers one event, non-blocking. Returns false when the session is
// closed or its buffer is full.
func (s *Session) Push(ev models.PushEvent) bool {
	select {
	case <-s.closer:
		return false
	default:
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// Close marks the session terminal. Safe to call more than once.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.closer)
	})
}
