package render

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRendererNotFound is returned when no renderer answers to a name.
var ErrRendererNotFound = errors.New("render: renderer not found")

// Registry holds the layout renderers of a site in registration order.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
	order  []string
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]Renderer{}}
}

// Register adds r under r.Name(). Names are unique.
func (reg *Registry) Register(r Renderer) error {
	if r == nil {
		return errors.New("render: nil renderer")
	}
	name := r.Name()
	if name == "" {
		return errors.New("render: renderer has no name")
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, dup := reg.byName[name]; dup {
		return fmt.Errorf("render: %q registered twice", name)
	}
	reg.byName[name] = r
	reg.order = append(reg.order, name)
	return nil
}

// MustRegister is Register for setup code.
func (reg *Registry) MustRegister(r Renderer) {
	if err := reg.Register(r); err != nil {
		panic(err)
	}
}

func (reg *Registry) Get(name string) (Renderer, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if r, ok := reg.byName[name]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, name)
}

// Names lists the renderers in registration order.
func (reg *Registry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return append([]string(nil), reg.order...)
}

// Resolve picks the renderer of a page request. An explicit name must
// exist. Without one the fallback is tried, then the first renderer
// registered.
func (reg *Registry) Resolve(name, fallback string) (Renderer, error) {
	if name != "" {
		return reg.Get(name)
	}
	if fallback != "" {
		if r, err := reg.Get(fallback); err == nil {
			return r, nil
		}
	}

	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if len(reg.order) == 0 {
		return nil, errors.New("render: no renderers registered")
	}
	return reg.byName[reg.order[0]], nil
}
