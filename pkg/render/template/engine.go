// Package template executes the pongo2 markup behind the layout renderer,
// the menu views and the page shell. Each Engine reads from an embedded
// bundle and, optionally, a directory of site overrides.
package template

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// Executor renders named templates. *Engine satisfies it.
type Executor interface {
	Has(name string) bool
	Execute(name string, data map[string]any) (string, error)
}

type Option func(*Engine)

// WithFS sets the built-in template bundle.
func WithFS(files fs.FS) Option {
	return func(e *Engine) { e.files = files }
}

// WithOverrideDir loads templates from dir before the bundle. A missing
// directory is ignored.
func WithOverrideDir(dir string) Option {
	return func(e *Engine) { e.overrides = strings.TrimSpace(dir) }
}

// WithName names the template set in error messages.
func WithName(name string) Option {
	return func(e *Engine) {
		if name = strings.TrimSpace(name); name != "" {
			e.name = name
		}
	}
}

// Engine is a pongo2 template set with compiled templates kept per name.
type Engine struct {
	files     fs.FS
	overrides string
	name      string
	ext       string

	set *pongo2.TemplateSet

	mu       sync.RWMutex
	compiled map[string]*pongo2.Template
}

var _ Executor = (*Engine)(nil)

// New builds an engine. At least one of WithFS or WithOverrideDir must
// point somewhere.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{name: "sitetheme", ext: ".tpl", compiled: map[string]*pongo2.Template{}}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	var loaders []pongo2.TemplateLoader
	if e.overrides != "" {
		if info, err := os.Stat(e.overrides); err == nil && info.IsDir() {
			loader, err := pongo2.NewLocalFileSystemLoader(e.overrides)
			if err != nil {
				return nil, fmt.Errorf("template %s: override dir: %w", e.name, err)
			}
			loaders = append(loaders, loader)
		}
	}
	if e.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(e.files))
	}
	if len(loaders) == 0 {
		return nil, fmt.Errorf("template %s: no template source", e.name)
	}

	registerFilters()
	e.set = pongo2.NewSet(e.name, loaders...)
	return e, nil
}

// Has reports whether name loads and compiles.
func (e *Engine) Has(name string) bool {
	_, err := e.lookup(name)
	return err == nil
}

// Execute renders the template stored under name.
func (e *Engine) Execute(name string, data map[string]any) (string, error) {
	tpl, err := e.lookup(name)
	if err != nil {
		return "", err
	}
	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("template %s: execute %s: %w", e.name, name, err)
	}
	return out, nil
}

// ExecuteString compiles and renders src with the filters of the set.
func (e *Engine) ExecuteString(src string, data map[string]any) (string, error) {
	tpl, err := e.set.FromString(src)
	if err != nil {
		return "", fmt.Errorf("template %s: compile: %w", e.name, err)
	}
	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("template %s: execute: %w", e.name, err)
	}
	return out, nil
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("template: name is required")
	}
	file := name
	if !strings.HasSuffix(file, e.ext) {
		file += e.ext
	}

	e.mu.RLock()
	tpl, ok := e.compiled[file]
	e.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	tpl, err := e.set.FromFile(file)
	if err != nil {
		return nil, fmt.Errorf("template %s: load %s: %w", e.name, file, err)
	}
	e.mu.Lock()
	e.compiled[file] = tpl
	e.mu.Unlock()
	return tpl, nil
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("classes") {
			_ = pongo2.RegisterFilter("classes", filterClasses)
		}
	})
}

// filterClasses collapses a class list to single spaces.
func filterClasses(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.Join(strings.Fields(in.String()), " ")), nil
}
