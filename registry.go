package fuse

import "sync"

// DefaultRegistry tracks every breaker not constructed with an
// explicit WithRegistry option.
var DefaultRegistry = NewRegistry()

// Registry tracks live (non-shutdown) breaker instances. Breakers add
// themselves on construction and remove themselves on Shutdown.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	breakers map[*Breaker]struct{}
}

// NewRegistry creates an empty Registry. Applications and tests that
// need isolation construct their own and pass it via WithRegistry.
func NewRegistry() *Registry {
	return &Registry{breakers: make(map[*Breaker]struct{})}
}

// All returns a snapshot of the currently-live breakers.
func (r *Registry) All() []*Breaker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Breaker, 0, len(r.breakers))
	for b := range r.breakers {
		out = append(out, b)
	}
	return out
}

// Len returns the number of currently-live breakers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.breakers)
}

// Find returns the first live breaker with the given name, or nil.
func (r *Registry) Find(name string) *Breaker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for b := range r.breakers {
		if b.name == name {
			return b
		}
	}
	return nil
}

func (r *Registry) add(b *Breaker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.breakers[b] = struct{}{}
}

func (r *Registry) remove(b *Breaker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.breakers, b)
}
