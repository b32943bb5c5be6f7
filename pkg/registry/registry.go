// Package registry manages the tools available to a session, keyed by name
// and preserving registration order for backend announcements.
package registry

import (
	"fmt"
	"sync"

	"github.com/dodgeblaster/orange-agent/pkg/domain"
	"github.com/dodgeblaster/orange-agent/pkg/ports"
)

// Registry manages the available tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ports.Tool
	order []string
}

// New creates a new empty registry.
func New(tools ...ports.Tool) *Registry {
	r := &Registry{
		tools: make(map[string]ports.Tool),
	}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

// Register adds a tool to the registry.
// If a tool with the same name exists, it is overwritten in place.
func (r *Registry) Register(t ports.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Get looks up a tool by name.
func (r *Registry) Get(name string) (ports.Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}
	return t, nil
}

// All returns the tools in registration order.
func (r *Registry) All() []ports.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ports.Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
