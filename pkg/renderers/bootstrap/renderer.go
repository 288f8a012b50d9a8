// Package bootstrap renders resolved layout sections to Bootstrap grid
// markup.
package bootstrap

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"strings"

	"github.com/goliatone/go-sitetheme/pkg/layout"
	"github.com/goliatone/go-sitetheme/pkg/positions"
	"github.com/goliatone/go-sitetheme/pkg/render"
	markup "github.com/goliatone/go-sitetheme/pkg/render/template"
)

// Name is the registry name of the renderer.
const Name = "bootstrap"

// Theme partial keys. A theme maps them to template names to replace the
// built-in markup.
const (
	PartialGenerate      = "layout.generate"
	PartialRows          = "layout.rows"
	PartialColumn        = "layout.column"
	PartialModules       = "layout.modules"
	PartialComponentArea = "layout.componentarea"
)

// DefaultModuleStyle is the module chrome used when none is requested.
const DefaultModuleStyle = "sp_xhtml"

var defaultTemplates = map[string]string{
	PartialGenerate:      "generate",
	PartialRows:          "rows",
	PartialColumn:        "column",
	PartialModules:       "modules",
	PartialComponentArea: "componentarea",
}

// DefaultPartials maps the partial keys to the built-in template names.
// It serves as the fallback set when deriving a theme renderer config.
func DefaultPartials() map[string]string {
	out := make(map[string]string, len(defaultTemplates))
	for k, v := range defaultTemplates {
		out[k] = v
	}
	return out
}

type Option func(*config)

type config struct {
	templateFS  fs.FS
	templateDir string
	executor    markup.Executor
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads overrides from a directory on disk, usually
// <template>/html/layouts. Files found there win over the built-in ones.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		cfg.templateDir = strings.TrimSpace(path)
	}
}

// WithExecutor replaces the template engine.
func WithExecutor(exec markup.Executor) Option {
	return func(cfg *config) {
		if exec != nil {
			cfg.executor = exec
		}
	}
}

// Renderer implements render.Renderer for Bootstrap 4 grids.
type Renderer struct {
	templates markup.Executor
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	exec := cfg.executor
	if exec == nil {
		engine, err := markup.New(
			markup.WithFS(cfg.templateFS),
			markup.WithOverrideDir(cfg.templateDir),
			markup.WithName(Name),
		)
		if err != nil {
			return nil, fmt.Errorf("bootstrap renderer: %w", err)
		}
		exec = engine
	}
	return &Renderer{templates: exec}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes every section in order.
func (r *Renderer) Render(ctx context.Context, sections []layout.ResolvedRow, opts render.Options) ([]byte, error) {
	var b strings.Builder
	for _, section := range sections {
		html, err := r.section(ctx, section, opts)
		if err != nil {
			return nil, err
		}
		b.WriteString(string(html))
	}
	return []byte(b.String()), nil
}

func (r *Renderer) section(ctx context.Context, row layout.ResolvedRow, opts render.Options) (template.HTML, error) {
	var columns strings.Builder
	for _, col := range row.Columns {
		html, err := r.column(ctx, col, opts)
		if err != nil {
			return "", fmt.Errorf("bootstrap renderer: section %s: %w", row.ID, err)
		}
		columns.WriteString(string(html))
	}

	rows, err := r.partial(PartialRows, opts, map[string]any{
		"id":      row.ID,
		"columns": columns.String(),
	})
	if err != nil {
		return "", err
	}

	return r.partial(PartialGenerate, opts, map[string]any{
		"semantic":  row.Semantic,
		"id":        row.ID,
		"classes":   row.Classes,
		"contained": render.Contained(row, opts),
		"fluid":     row.Fluid,
		"component": row.ComponentArea,
		"rows":      string(rows),
		"tokens":    tokens(opts),
	})
}

func (r *Renderer) column(ctx context.Context, col layout.ResolvedColumn, opts render.Options) (template.HTML, error) {
	var (
		content template.HTML
		err     error
	)
	if col.Component {
		content, err = r.partial(PartialComponentArea, opts, map[string]any{
			"message":   string(opts.Message),
			"component": string(opts.Component),
		})
	} else {
		content, err = r.modules(ctx, col.Position, opts)
	}
	if err != nil {
		return "", err
	}

	return r.partial(PartialColumn, opts, map[string]any{
		"id":           ColumnID(col),
		"class":        col.ClassName,
		"custom_class": col.Settings.CustomClass,
		"position":     col.Position,
		"component":    col.Component,
		"content":      string(content),
	})
}

func (r *Renderer) modules(ctx context.Context, position string, opts render.Options) (template.HTML, error) {
	block, err := opts.Block(ctx, position)
	if err != nil {
		return "", err
	}
	style := opts.ModuleStyle
	if style == "" {
		style = DefaultModuleStyle
	}
	return r.partial(PartialModules, opts, map[string]any{
		"position": position,
		"style":    style,
		"before":   htmlStrings(block.Before),
		"modules":  moduleData(block.Modules),
		"after":    htmlStrings(block.After),
	})
}

// partial renders the theme override of key when the engine can load it,
// else the built-in template.
func (r *Renderer) partial(key string, opts render.Options, data map[string]any) (template.HTML, error) {
	name := defaultTemplates[key]
	if candidate := strings.TrimSpace(opts.Partial(key)); candidate != "" && r.templates.Has(candidate) {
		name = candidate
	}
	out, err := r.templates.Execute(name, data)
	if err != nil {
		return "", fmt.Errorf("bootstrap renderer: render %q: %w", name, err)
	}
	return template.HTML(out), nil
}

// ColumnID returns the DOM id of a column: sp-component for the component
// area, sp-<position> otherwise.
func ColumnID(col layout.ResolvedColumn) string {
	if col.Component {
		return "sp-component"
	}
	if slug := layout.URLSafe(col.Position); slug != "" {
		return "sp-" + slug
	}
	return "sp-column"
}

func htmlStrings(in []template.HTML) []string {
	out := make([]string, 0, len(in))
	for _, h := range in {
		out = append(out, string(h))
	}
	return out
}

func moduleData(mods []positions.RenderedModule) []map[string]any {
	out := make([]map[string]any, 0, len(mods))
	for _, m := range mods {
		out = append(out, map[string]any{
			"title":      m.Title,
			"show_title": m.ShowTitle,
			"class":      m.Class,
			"html":       string(m.HTML),
		})
	}
	return out
}

func tokens(opts render.Options) map[string]string {
	if opts.Theme == nil {
		return nil
	}
	return opts.Theme.Tokens
}
