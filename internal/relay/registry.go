package relay

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/lessslie/yourdashboard-gateway/internal/models"
)

var (
	activeSubscriptionsMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "number_of_active_subscriptions",
		Help: "The number of active key subscriptions",
	})
	deliveredEventsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "number_of_delivered_events",
		Help: "The total number of events delivered to connections",
	})
	droppedEventsMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "number_of_dropped_events",
		Help: "The total number of events dropped on closed or slow connections",
	})
)

// Registry is the process-wide table of live connections keyed by identity
// or channel. It is the only mutable shared state in the gateway; it is
// rebuilt empty on restart.
type Registry struct {
	mux      sync.RWMutex
	sessions map[string]map[*Session]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]map[*Session]struct{}),
	}
}

// Register adds the session under each of its keys. A lookup never
// observes a session under only some of its keys mid-registration.
func (r *Registry) Register(s *Session) {
	log := log.WithField("prefix", "Registry.Register")
	r.mux.Lock()
	defer r.mux.Unlock()
	for _, key := range s.Keys {
		set, ok := r.sessions[key]
		if !ok {
			set = make(map[*Session]struct{})
			r.sessions[key] = set
		}
		if _, dup := set[s]; !dup {
			set[s] = struct{}{}
			activeSubscriptionsMetric.Inc()
		}
	}
	log.Infof("registered session %s for keys %v", s.ID, s.Keys)
}

// Unregister removes the session from every key it was registered under.
// Unregistering an absent session is a no-op.
func (r *Registry) Unregister(s *Session) {
	log := log.WithField("prefix", "Registry.Unregister")
	r.mux.Lock()
	defer r.mux.Unlock()
	for _, key := range s.Keys {
		set, ok := r.sessions[key]
		if !ok {
			continue
		}
		if _, present := set[s]; !present {
			continue
		}
		delete(set, s)
		activeSubscriptionsMetric.Dec()
		if len(set) == 0 {
			delete(r.sessions, key)
		}
	}
	log.Infof("removed session %s", s.ID)
}

// Lookup returns a snapshot of the sessions subscribed to key.
func (r *Registry) Lookup(key string) []*Session {
	r.mux.RLock()
	defer r.mux.RUnlock()
	set, ok := r.sessions[key]
	if !ok {
		return nil
	}
	sessions := make([]*Session, 0, len(set))
	for s := range set {
		sessions = append(sessions, s)
	}
	return sessions
}

// Dispatch relays one event to every connection subscribed to key, at most
// one copy each, best effort. Returns the number of connections that took
// the event; events with no subscriber are dropped.
func (r *Registry) Dispatch(key string, ev models.PushEvent) int {
	delivered := 0
	for _, s := range r.Lookup(key) {
		if s.Push(ev) {
			delivered++
			deliveredEventsMetric.Inc()
		} else {
			droppedEventsMetric.Inc()
		}
	}
	return delivered
}

// CloseAll evicts every connection, e.g. on server shutdown.
func (r *Registry) CloseAll() {
	r.mux.Lock()
	evicted := make(map[*Session]struct{})
	for key, set := range r.sessions {
		for s := range set {
			evicted[s] = struct{}{}
		}
		activeSubscriptionsMetric.Sub(float64(len(set)))
		delete(r.sessions, key)
	}
	r.mux.Unlock()

	for s := range evicted {
		s.Close()
	}
}
