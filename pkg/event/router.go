package event

import (
	"sync"

	"github.com/Torchwoods/znp-host-framework/pkg/mt"
)

// Handler processes one asynchronous frame. The returned error is logged by
// the pump and otherwise ignored.
type Handler func(f *mt.Frame) error

// Router dispatches frames by (subsystem, id).
type Router struct {
	mu       sync.RWMutex
	handlers map[mt.Key]Handler
	fallback Handler
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{handlers: make(map[mt.Key]Handler)}
}

// Handle registers h for kind, replacing any previous handler.
// A nil h removes the registration.
func (r *Router) Handle(kind mt.Key, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h == nil {
		delete(r.handlers, kind)
		return
	}
	r.handlers[kind] = h
}

// Fallback sets the handler for kinds without a registration.
func (r *Router) Fallback(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = h
}

// Handled reports whether kind has its own handler.
func (r *Router) Handled(kind mt.Key) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[kind]
	return ok
}

// Dispatch calls the handler for f, or the fallback. With neither it is a
// no-op.
func (r *Router) Dispatch(f *mt.Frame) error {
	r.mu.RLock()
	h, ok := r.handlers[f.Command.Key()]
	if !ok {
		h = r.fallback
	}
	r.mu.RUnlock()

	if h == nil {
		return nil
	}
	return h(f)
}
