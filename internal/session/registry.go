package session

import (
	"sort"
	"sync"

	"github.com/hubwatch/panelhost/internal/infrastructure/monitoring"
)

// Factory builds a session for a hub. onDispose must be invoked when
// the session fully tears down so the registry can drop it.
type Factory func(hub string, onDispose func()) *Session

// Registry tracks one session per hub. Disposed sessions remove
// themselves; a later Obtain for the same hub starts fresh.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	factory  Factory
	metrics  *monitoring.Metrics
}

// NewRegistry creates a session registry.
func NewRegistry(factory Factory, metrics *monitoring.Metrics) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
		metrics:  metrics,
	}
}

// Obtain returns the hub's session, creating it if absent.
func (r *Registry) Obtain(hub string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[hub]; ok {
		return s
	}

	s := r.factory(hub, func() {
		r.remove(hub)
	})
	r.sessions[hub] = s
	if r.metrics != nil {
		r.metrics.SessionsActive.Inc()
	}
	return s
}

// Get returns the hub's session without creating one.
func (r *Registry) Get(hub string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[hub]
	return s, ok
}

// Hubs lists the hubs with live sessions, sorted.
func (r *Registry) Hubs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	hubs := make([]string, 0, len(r.sessions))
	for hub := range r.sessions {
		hubs = append(hubs, hub)
	}
	sort.Strings(hubs)
	return hubs
}

// CleanupAll tears down every session, for shutdown.
func (r *Registry) CleanupAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Cleanup()
	}
}

func (r *Registry) remove(hub string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[hub]; !ok {
		return
	}
	delete(r.sessions, hub)
	if r.metrics != nil {
		r.metrics.SessionsActive.Dec()
	}
}
