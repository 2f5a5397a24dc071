// Package chat implements the per-connection server logic: the login
// exchange over an established TLS stream, the process-wide session registry,
// and the relay loop that enforces token validity and message freshness.
package chat

import (
	"sort"
	"sync"

	"github.com/Hashith00/tlschat/internal/server/metrics"
)

// Registry is the process-wide mapping from display name to live session.
// It is safe for concurrent use by connection handlers and the operator
// console. If two connections authenticate under the same display name, the
// second silently overwrites the first's entry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Add registers a session under its display name.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.Name()] = s
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
}

// Remove drops the session registered under name. Removing an absent name is
// a no-op.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	delete(r.sessions, name)
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.mu.Unlock()
}

// Get returns the session registered under name, if any.
func (r *Registry) Get(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[name]
	return s, ok
}

// Names returns a sorted snapshot of the currently connected display names.
// The snapshot is consistent but not linearizable with concurrent mutation.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
