package registry

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Holder publishes the active registry to readers and swaps it atomically on reload.
type Holder struct {
	current   atomic.Pointer[Registry]
	mu        sync.Mutex
	listeners []func(*Registry)
}

func NewHolder(r *Registry) *Holder {
	h := &Holder{}
	h.current.Store(r)
	registryEntries.Set(float64(r.Count()))
	return h
}

func (h *Holder) Get() *Registry {
	return h.current.Load()
}

func (h *Holder) Set(r *Registry) {
	h.current.Store(r)
	registryEntries.Set(float64(r.Count()))

	h.mu.Lock()
	listeners := slices.Clone(h.listeners)
	h.mu.Unlock()
	for _, fn := range listeners {
		fn(r)
	}
}

// OnChange registers fn to run after every Set.
func (h *Holder) OnChange(fn func(*Registry)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}
