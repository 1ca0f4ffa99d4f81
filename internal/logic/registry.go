package logic

import "sync"

type listener struct {
	name string
	fn   func()
}

// Registry is an insertion-ordered set of named callbacks.
// Callbacks must not block: they run on the goroutine calling Fire.
type Registry struct {
	mu        sync.Mutex
	listeners []listener
}

// Add appends fn under name. It returns false, leaving the registry
// unchanged, if name is already registered.
func (r *Registry) Add(name string, fn func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range r.listeners {
		if l.name == name {
			return false
		}
	}
	r.listeners = append(r.listeners, listener{name: name, fn: fn})
	return true
}

// Remove deletes the listener registered under name.
// Returns true iff such a listener existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, l := range r.listeners {
		if l.name == name {
			r.listeners = append(r.listeners[:i:i], r.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Fire invokes every callback once, in registration order.
// The list is copied first, so callbacks may add or remove listeners;
// such changes take effect from the next Fire. A panicking callback
// aborts the remaining calls.
func (r *Registry) Fire() {
	r.mu.Lock()
	ls := make([]listener, len(r.listeners))
	copy(ls, r.listeners)
	r.mu.Unlock()

	for _, l := range ls {
		l.fn()
	}
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

// Names returns listener names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.listeners))
	for i, l := range r.listeners {
		names[i] = l.name
	}
	return names
}
