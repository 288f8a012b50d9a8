package positions

import (
	"context"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-sitetheme/pkg/params"
)

// Load positions of a feature relative to the slot's modules.
const (
	LoadBefore = "before"
	LoadAfter  = "after"
)

// Module is a host managed widget assigned to a position.
type Module struct {
	ID        int64
	Title     string
	Position  string
	Content   string
	Format    string
	ShowTitle bool
	Class     string
	Ordering  int
	Params    params.Params
}

// Source lists the published modules of a position in display order.
type Source interface {
	Modules(ctx context.Context, position string) ([]Module, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, position string) ([]Module, error)

func (f SourceFunc) Modules(ctx context.Context, position string) ([]Module, error) {
	return f(ctx, position)
}

// ModuleLookup is implemented by sources that can load a single module.
type ModuleLookup interface {
	Module(ctx context.Context, id int64) (Module, error)
}

// Feature is template provided content bound to a position.
type Feature interface {
	// Position returns the slot the feature renders into, or "" when the
	// feature is switched off for p.
	Position(p params.Params) string
	LoadPos() string
	Render(ctx context.Context, p params.Params) (template.HTML, error)
}

// ContentFilter turns a module body into markup.
type ContentFilter func(m Module) (template.HTML, error)

type rule struct {
	name     string
	priority int
	feature  Feature
	order    int
}

// Registry holds the module source and the registered features.
type Registry struct {
	mu     sync.RWMutex
	source Source
	filter ContentFilter
	rules  []rule
}

// Option configures a Registry.
type Option func(*Registry)

// WithSource sets the module source.
func WithSource(src Source) Option {
	return func(r *Registry) {
		r.source = src
	}
}

// WithContentFilter sets how module bodies become markup. The default
// trusts the stored HTML.
func WithContentFilter(f ContentFilter) Option {
	return func(r *Registry) {
		if f != nil {
			r.filter = f
		}
	}
}

// NewRegistry constructs an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		filter: func(m Module) (template.HTML, error) { return template.HTML(m.Content), nil },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register adds a feature. Higher priority values render first within a
// load position; duplicate names replace the earlier registration.
func (r *Registry) Register(name string, priority int, f Feature) {
	if r == nil || f == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.rules {
		if r.rules[i].name == name {
			r.rules[i].priority = priority
			r.rules[i].feature = f
			return
		}
	}
	r.rules = append(r.rules, rule{name: name, priority: priority, feature: f, order: len(r.rules)})
}

// Features returns the registered feature names sorted alphabetically.
func (r *Registry) Features() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.rules))
	for _, entry := range r.rules {
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) sortedRules() []rule {
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	return rules
}

// RenderModule renders one module by id. The source must implement
// ModuleLookup.
func (r *Registry) RenderModule(ctx context.Context, id int64) (template.HTML, error) {
	lookup, ok := r.source.(ModuleLookup)
	if !ok {
		return "", fmt.Errorf("positions: source cannot load module %d", id)
	}
	m, err := lookup.Module(ctx, id)
	if err != nil {
		return "", fmt.Errorf("positions: load module %d: %w", id, err)
	}
	return r.filter(m)
}

// Bind returns the position view for one request rendered with p.
func (r *Registry) Bind(p params.Params) *Page {
	page := &Page{
		registry: r,
		params:   p,
		modules:  map[string][]Module{},
		features: map[string][]rule{},
	}
	for _, entry := range r.sortedRules() {
		if pos := strings.TrimSpace(entry.feature.Position(p)); pos != "" {
			page.features[pos] = append(page.features[pos], entry)
		}
	}
	return page
}
