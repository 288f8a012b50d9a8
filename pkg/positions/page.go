package positions

import (
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/goliatone/go-sitetheme/pkg/params"
)

// Block is the rendered content of one position.
type Block struct {
	Position string
	Before   []template.HTML
	Modules  []RenderedModule
	After    []template.HTML
}

// RenderedModule is a module with its body turned into markup.
type RenderedModule struct {
	Module
	HTML template.HTML
}

// Empty reports whether the block has nothing to show.
func (b Block) Empty() bool {
	return len(b.Before) == 0 && len(b.Modules) == 0 && len(b.After) == 0
}

// Page is the position view for one request. It implements
// layout.PositionChecker and caches module lookups.
type Page struct {
	registry *Registry
	params   params.Params

	mu       sync.Mutex
	modules  map[string][]Module
	features map[string][]rule
}

// HasFeature reports whether a feature renders into position.
func (p *Page) HasFeature(position string) bool {
	return len(p.features[position]) > 0
}

// HasModules reports whether position has modules or features. Lookup
// errors count as empty.
func (p *Page) HasModules(ctx context.Context, position string) bool {
	if p.HasFeature(position) {
		return true
	}
	mods, err := p.lookup(ctx, position)
	return err == nil && len(mods) > 0
}

// Render builds the block of position.
func (p *Page) Render(ctx context.Context, position string) (Block, error) {
	block := Block{Position: position}
	for _, entry := range p.features[position] {
		html, err := entry.feature.Render(ctx, p.params)
		if err != nil {
			return Block{}, fmt.Errorf("positions: feature %s: %w", entry.name, err)
		}
		if html == "" {
			continue
		}
		if entry.feature.LoadPos() == LoadBefore {
			block.Before = append(block.Before, html)
		} else {
			block.After = append(block.After, html)
		}
	}

	mods, err := p.lookup(ctx, position)
	if err != nil {
		return Block{}, err
	}
	for _, m := range mods {
		html, err := p.registry.filter(m)
		if err != nil {
			return Block{}, fmt.Errorf("positions: module %d: %w", m.ID, err)
		}
		block.Modules = append(block.Modules, RenderedModule{Module: m, HTML: html})
	}
	return block, nil
}

func (p *Page) lookup(ctx context.Context, position string) ([]Module, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if mods, ok := p.modules[position]; ok {
		return mods, nil
	}
	if p.registry == nil || p.registry.source == nil {
		return nil, nil
	}
	mods, err := p.registry.source.Modules(ctx, position)
	if err != nil {
		return nil, fmt.Errorf("positions: load %s: %w", position, err)
	}
	p.modules[position] = mods
	return mods, nil
}
